package repository

import (
	"poker_web/internal/models"
	"poker_web/internal/storage"
)

type RoomRepository interface {
	Create(room models.Room)
	FindByID(roomID string) (models.Room, bool)
	// AddMember 重複加入不會有副作用，回傳加入後的成員
	AddMember(roomID, userID string) ([]string, error)
	Members(roomID string) []string
	Count() int
}

type directory struct {
	rooms   map[string]models.Room
	members map[string]map[string]struct{}
}

type roomRepository struct {
	table *storage.Guarded[directory]
}

func newRoomRepository() *roomRepository {
	return &roomRepository{
		table: storage.NewGuarded(directory{
			rooms:   make(map[string]models.Room),
			members: make(map[string]map[string]struct{}),
		}),
	}
}

func (r *roomRepository) Create(room models.Room) {
	r.table.Write(func(d *directory) {
		d.rooms[room.ID] = room
	})
}

func (r *roomRepository) FindByID(roomID string) (models.Room, bool) {
	var (
		room models.Room
		ok   bool
	)
	r.table.Read(func(d *directory) {
		room, ok = d.rooms[roomID]
	})
	return room, ok
}

func (r *roomRepository) AddMember(roomID, userID string) ([]string, error) {
	var (
		members []string
		err     error
	)
	r.table.Write(func(d *directory) {
		if _, ok := d.rooms[roomID]; !ok {
			err = models.ErrRoomNotFound
			return
		}
		set, ok := d.members[roomID]
		if !ok {
			set = make(map[string]struct{})
			d.members[roomID] = set
		}
		set[userID] = struct{}{}
		members = keys(set)
	})
	return members, err
}

// Members 成員順序不保證
func (r *roomRepository) Members(roomID string) []string {
	var members []string
	r.table.Read(func(d *directory) {
		members = keys(d.members[roomID])
	})
	return members
}

func (r *roomRepository) Count() int {
	var n int
	r.table.Read(func(d *directory) {
		n = len(d.rooms)
	})
	return n
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
