package repository

import (
	"poker_web/internal/models"
	"poker_web/internal/storage"
)

// UserRepository 是身分資料表：使用者與 session 共用一把鎖
type UserRepository interface {
	Create(user models.User) models.Session
	FindByID(userID string) (models.User, bool)
	FindByIDs(userIDs []string) []models.User
	Update(userID string, fn func(user *models.User)) (models.User, error)

	// ResumeSession 找到 session 時將其標記為已連線；
	// 若該 session 仍在其他連線上則另開一個綁定同一使用者的新 session
	ResumeSession(sessionID string) (models.Session, models.User, bool)
	// BindSession 為既有使用者建立新的 session
	BindSession(userID string) (models.Session, models.User, bool)
	SetConnected(sessionID string, connected bool) (models.Session, error)
	FindSession(sessionID string) (models.Session, bool)
}

type identity struct {
	users    map[string]models.User
	sessions map[string]models.Session
}

type userRepository struct {
	table *storage.Guarded[identity]
}

func newUserRepository() *userRepository {
	return &userRepository{
		table: storage.NewGuarded(identity{
			users:    make(map[string]models.User),
			sessions: make(map[string]models.Session),
		}),
	}
}

// Create 新增使用者並同時綁定第一個 session
func (r *userRepository) Create(user models.User) models.Session {
	session := models.NewSession(user.ID)
	r.table.Write(func(id *identity) {
		id.users[user.ID] = user
		id.sessions[session.ID] = session
	})
	return session
}

func (r *userRepository) FindByID(userID string) (models.User, bool) {
	var (
		user models.User
		ok   bool
	)
	r.table.Read(func(id *identity) {
		user, ok = id.users[userID]
	})
	return user, ok
}

// FindByIDs 忽略不存在的 ID
func (r *userRepository) FindByIDs(userIDs []string) []models.User {
	users := make([]models.User, 0, len(userIDs))
	r.table.Read(func(id *identity) {
		for _, userID := range userIDs {
			if user, ok := id.users[userID]; ok {
				users = append(users, user)
			}
		}
	})
	return users
}

func (r *userRepository) Update(userID string, fn func(user *models.User)) (models.User, error) {
	var (
		user models.User
		err  error
	)
	r.table.Write(func(id *identity) {
		existing, ok := id.users[userID]
		if !ok {
			err = models.ErrUserNotFound
			return
		}
		fn(&existing)
		existing.ID = userID
		id.users[userID] = existing
		user = existing
	})
	return user, err
}

func (r *userRepository) ResumeSession(sessionID string) (models.Session, models.User, bool) {
	var (
		session models.Session
		user    models.User
		ok      bool
	)
	r.table.Write(func(id *identity) {
		session, ok = id.sessions[sessionID]
		if !ok {
			return
		}
		user, ok = id.users[session.UserID]
		if !ok {
			return
		}
		// 同一個 session 已在其他連線上使用時另開一個，避免一邊斷線影響另一邊
		if session.Connected {
			session = models.NewSession(user.ID)
		}
		session.Connected = true
		id.sessions[session.ID] = session
	})
	return session, user, ok
}

func (r *userRepository) BindSession(userID string) (models.Session, models.User, bool) {
	var (
		session models.Session
		user    models.User
		ok      bool
	)
	r.table.Write(func(id *identity) {
		user, ok = id.users[userID]
		if !ok {
			return
		}
		session = models.NewSession(userID)
		id.sessions[session.ID] = session
	})
	return session, user, ok
}

func (r *userRepository) SetConnected(sessionID string, connected bool) (models.Session, error) {
	var (
		session models.Session
		err     error
	)
	r.table.Write(func(id *identity) {
		existing, ok := id.sessions[sessionID]
		if !ok {
			err = models.ErrUnknownSession
			return
		}
		existing.Connected = connected
		id.sessions[sessionID] = existing
		session = existing
	})
	return session, err
}

func (r *userRepository) FindSession(sessionID string) (models.Session, bool) {
	var (
		session models.Session
		ok      bool
	)
	r.table.Read(func(id *identity) {
		session, ok = id.sessions[sessionID]
	})
	return session, ok
}
