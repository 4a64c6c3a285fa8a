package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"poker_web/internal/models"
	"poker_web/internal/service"
)

// 客戶端可送出的請求種類
const (
	EventCreateRoom = "create room"
	EventJoin       = "join"
	EventVote       = "vote"
	EventEndVote    = "end vote"
	EventNewRound   = "new round"
	EventUpdateUser = "update user"
	EventMessage    = "message"
)

// Emitter 是路由器對連線層的需求，WebSocketManager 實作它
type Emitter interface {
	Emit(clientID, event string, payload any)
	EmitRoom(roomID, event string, payload any)
	EmitAll(event string, payload any)
	Reply(clientID, requestID string, ack service.Ack)
	JoinOnly(clientID, roomID string)
	RoomsOf(clientID string) []string
}

// SessionContext 是一條連線在握手時解析出的身分，之後每個請求都靠它找出使用者
type SessionContext struct {
	ConnID  string
	Session models.Session
}

func (c SessionContext) UserID() string {
	return c.Session.UserID
}

// EventRouter 解碼請求、呼叫服務、回覆確認並廣播結果
type EventRouter struct {
	emitter  Emitter
	users    *service.UserService
	rooms    *service.RoomService
	rounds   *service.RoundService
	messages *service.MessageService
}

func NewEventRouter(emitter Emitter, services *service.Services) *EventRouter {
	return &EventRouter{
		emitter:  emitter,
		users:    services.User,
		rooms:    services.Room,
		rounds:   services.Round,
		messages: services.Message,
	}
}

type eventHandler func(r *EventRouter, ctx SessionContext, payload json.RawMessage) (any, error)

var eventHandlers = map[string]eventHandler{
	EventCreateRoom: (*EventRouter).createRoom,
	EventJoin:       (*EventRouter).join,
	EventVote:       (*EventRouter).vote,
	EventEndVote:    (*EventRouter).endVote,
	EventNewRound:   (*EventRouter).newRound,
	EventUpdateUser: (*EventRouter).updateUser,
	EventMessage:    (*EventRouter).message,
}

// Dispatch 每個請求恰好回覆一次 ack；廣播只在成功時由各 handler 送出
func (r *EventRouter) Dispatch(ctx SessionContext, frame service.Frame) {
	handler, ok := eventHandlers[frame.Type]
	if !ok {
		err := fmt.Errorf("%w: unknown event %q", models.ErrInvalidPayload, frame.Type)
		r.emitter.Reply(ctx.ConnID, frame.RequestID, service.ErrorAck(err))
		return
	}

	data, err := handler(r, ctx, frame.Payload)
	if err != nil {
		slog.Debug("request failed", "event", frame.Type, "user_id", ctx.UserID(), "error", err)
		r.emitter.Reply(ctx.ConnID, frame.RequestID, service.ErrorAck(err))
		return
	}
	r.emitter.Reply(ctx.ConnID, frame.RequestID, service.OKAck(data))
}

// Disconnect 連線中斷只改變連線狀態，成員資格保留
func (r *EventRouter) Disconnect(ctx SessionContext) {
	session, err := r.users.Disconnect(ctx.Session.ID)
	if err != nil {
		slog.Warn("disconnect of unknown session", "session_id", ctx.Session.ID, "error", err)
		return
	}
	r.emitter.EmitAll("user disconnected", session.DTO())
}

type createRoomRequest struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
}

func (r *EventRouter) createRoom(ctx SessionContext, payload json.RawMessage) (any, error) {
	var req createRoomRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	room, err := r.rooms.CreateRoom(req.Name, req.Mode)
	if err != nil {
		return nil, err
	}
	return room.DTO(), nil
}

type joinRequest struct {
	Room string `json:"room"`
}

// JoinResponse 是加入房間時 ack 帶回的完整快照
type JoinResponse struct {
	Room         models.RoomDTO          `json:"room"`
	Users        []models.UserDTO        `json:"users"`
	Rounds       []models.RoundDTO       `json:"rounds"`
	CurrentRound *models.CurrentRoundDTO `json:"currentRound"`
	Votes        []models.VoteDTO        `json:"votes"`
	Messages     []models.MessageDTO     `json:"messages"`
}

func (r *EventRouter) join(ctx SessionContext, payload json.RawMessage) (any, error) {
	var req joinRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	if _, err := r.rooms.GetRoom(req.Room); err != nil {
		return nil, err
	}
	// 先訂閱再取快照，之後的廣播才不會漏掉
	r.emitter.JoinOnly(ctx.ConnID, req.Room)

	snapshot, err := r.rooms.Join(req.Room, ctx.UserID())
	if err != nil {
		return nil, err
	}

	resp := JoinResponse{
		Room:     snapshot.Room.DTO(),
		Users:    redacted(snapshot.Members),
		Rounds:   models.RoundDTOs(snapshot.Rounds),
		Votes:    models.VoteDTOs(snapshot.Votes),
		Messages: models.MessageDTOs(snapshot.Messages),
	}
	if snapshot.Current != nil {
		current := snapshot.Current.DTO()
		resp.CurrentRound = &current
	}

	if resp.CurrentRound != nil {
		r.emitter.Emit(ctx.ConnID, "current round", resp.CurrentRound)
	} else {
		r.emitter.Emit(ctx.ConnID, "current round", nil)
	}
	r.emitter.Emit(ctx.ConnID, "rounds", resp.Rounds)
	r.emitter.Emit(ctx.ConnID, "votes", resp.Votes)
	r.emitter.Emit(ctx.ConnID, "room", resp.Room)
	r.emitter.EmitRoom(snapshot.Room.ID, "users", resp.Users)

	return resp, nil
}

type voteRequest struct {
	Room  string `json:"room"`
	Score string `json:"score"`
}

func (r *EventRouter) vote(ctx SessionContext, payload json.RawMessage) (any, error) {
	var req voteRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	roomID, err := r.currentRoom(ctx, req.Room)
	if err != nil {
		return nil, err
	}

	vote, board, err := r.rounds.CastVote(roomID, ctx.UserID(), req.Score)
	if err != nil {
		return nil, err
	}

	dto := vote.DTO()
	r.emitter.Emit(ctx.ConnID, "vote", dto)
	r.emitter.EmitRoom(roomID, "votes", models.VoteDTOs(board))

	return dto, nil
}

type roomRequest struct {
	Room string `json:"room"`
}

func (r *EventRouter) endVote(ctx SessionContext, payload json.RawMessage) (any, error) {
	var req roomRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	roomID, err := r.currentRoom(ctx, req.Room)
	if err != nil {
		return nil, err
	}

	current, err := r.rounds.EndVote(roomID)
	if err != nil {
		return nil, err
	}

	dto := current.DTO()
	r.emitter.EmitRoom(roomID, "current round", dto)

	return dto, nil
}

type newRoundRequest struct {
	Room    string              `json:"room"`
	Options models.RoundOptions `json:"options"`
}

func (r *EventRouter) newRound(ctx SessionContext, payload json.RawMessage) (any, error) {
	var req newRoundRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	roomID, err := r.currentRoom(ctx, req.Room)
	if err != nil {
		return nil, err
	}

	transition, err := r.rounds.StartRound(roomID, req.Options)
	if err != nil {
		return nil, err
	}

	current := transition.Current.DTO()
	r.emitter.EmitRoom(roomID, "rounds", models.RoundDTOs(transition.Archived))
	r.emitter.EmitRoom(roomID, "votes", []models.VoteDTO{})
	r.emitter.EmitRoom(roomID, "current round", current)

	return current, nil
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r *EventRouter) updateUser(ctx SessionContext, payload json.RawMessage) (any, error) {
	var req updateUserRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	user, err := r.users.UpdateProfile(ctx.UserID(), req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	dto := user.DTO()
	r.emitter.Emit(ctx.ConnID, "user", dto)
	for _, roomID := range r.emitter.RoomsOf(ctx.ConnID) {
		r.emitter.EmitRoom(roomID, "user updated", user.Redacted())
	}

	return dto, nil
}

type messageRequest struct {
	Room    string `json:"room"`
	Content string `json:"content"`
}

func (r *EventRouter) message(ctx SessionContext, payload json.RawMessage) (any, error) {
	var req messageRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	roomID, err := r.currentRoom(ctx, req.Room)
	if err != nil {
		return nil, err
	}

	message, err := r.messages.Post(roomID, ctx.UserID(), req.Content)
	if err != nil {
		return nil, err
	}

	dto := message.DTO()
	r.emitter.EmitRoom(roomID, "message", dto)

	return dto, nil
}

// currentRoom 回傳連線加入的房間；請求帶了 room 時必須一致
func (r *EventRouter) currentRoom(ctx SessionContext, requested string) (string, error) {
	rooms := r.emitter.RoomsOf(ctx.ConnID)
	if len(rooms) == 0 {
		return "", models.ErrNotInRoom
	}
	joined := rooms[0]
	if requested != "" && requested != joined {
		return "", fmt.Errorf("%w: %s", models.ErrNotInRoom, requested)
	}
	return joined, nil
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidPayload, err)
	}
	return nil
}

func redacted(users []models.User) []models.UserDTO {
	dtos := make([]models.UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, u.Redacted())
	}
	return dtos
}
