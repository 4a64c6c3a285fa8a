package service

import (
	"errors"
	"log/slog"
	"strings"

	"poker_web/internal/models"
	"poker_web/internal/repository"
	"poker_web/internal/utils"
)

// ConnectRequest 是連線握手時帶上的身分資訊，三者皆可為空
type ConnectRequest struct {
	SessionToken string
	UserToken    string
	Name         string
}

type UserService struct {
	userRepo repository.UserRepository
	tokens   *utils.TokenIssuer
}

func NewUserService(userRepo repository.UserRepository, tokens *utils.TokenIssuer) *UserService {
	return &UserService{userRepo: userRepo, tokens: tokens}
}

// Connect 解析或建立連線的身分：
// 已知 session -> 重新連線；已知使用者 -> 新裝置；否則建立新使用者。
// 失敗一律包成 IdentityError。
func (s *UserService) Connect(req ConnectRequest) (models.Session, models.User, error) {
	if req.SessionToken != "" {
		claims, err := s.tokens.ParseToken(req.SessionToken)
		switch {
		case errors.Is(err, models.ErrExpiredToken):
			// 過期的 session 不再恢復，但 token 內的使用者仍然有效
			slog.Debug("session token expired", "session_id", claims.SessionID, "user_id", claims.UserID)
		case err != nil:
			return models.Session{}, models.User{}, models.IdentityError(err)
		default:
			if session, user, ok := s.userRepo.ResumeSession(claims.SessionID); ok {
				slog.Debug("session resumed", "session_id", session.ID, "user_id", user.ID)
				return session, user, nil
			}
		}
		// session 已不存在 (例如伺服器重啟) 或已過期，改用 token 內的使用者
		if req.UserToken == "" {
			req.UserToken = claims.UserID
		}
	}

	if req.UserToken != "" {
		if _, err := models.DecodeID(req.UserToken); err != nil {
			return models.Session{}, models.User{}, models.IdentityError(err)
		}
		if session, user, ok := s.userRepo.BindSession(req.UserToken); ok {
			slog.Debug("session bound to existing user", "session_id", session.ID, "user_id", user.ID)
			return session, user, nil
		}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = utils.RandomName()
	}
	user := models.NewUser(name)
	session := s.userRepo.Create(user)
	slog.Info("user created", "user_id", user.ID, "name", user.Name)

	return session, user, nil
}

// IssueToken 簽發客戶端重新連線時要帶回來的 token
func (s *UserService) IssueToken(session models.Session) (string, error) {
	return s.tokens.GenerateToken(session)
}

// Disconnect 只改變連線狀態，不影響房間成員資格
func (s *UserService) Disconnect(sessionID string) (models.Session, error) {
	return s.userRepo.SetConnected(sessionID, false)
}

// UpdateProfile 更新名稱與 email，並重新計算頭像
func (s *UserService) UpdateProfile(userID, name, email string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	return s.userRepo.Update(userID, func(user *models.User) {
		if name != "" {
			user.Name = name
		}
		user.Email = email
		user.Avatar = models.AvatarToken(email)
	})
}

func (s *UserService) GetUser(userID string) (models.User, error) {
	user, ok := s.userRepo.FindByID(userID)
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetSession(sessionID string) (models.Session, error) {
	session, ok := s.userRepo.FindSession(sessionID)
	if !ok {
		return models.Session{}, models.ErrUnknownSession
	}
	return session, nil
}

// IsIdentityError 方便 transport 判斷是否應關閉連線
func IsIdentityError(err error) bool {
	return err != nil && models.KindOf(err) == models.KindIdentity
}
