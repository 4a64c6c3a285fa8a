package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"

	"poker_web/internal/models"
	"poker_web/internal/repository"
	"poker_web/internal/utils"
)

func newTestServices(t *testing.T) *Services {
	t.Helper()

	return NewServices(
		repository.NewRepositories(),
		utils.NewTokenIssuer("test-secret", time.Hour),
		WebSocketOptions{
			ReadLimit:  4096,
			PongWait:   time.Minute,
			PingPeriod: 50 * time.Second,
			WriteWait:  time.Second,
			SendBuffer: 16,
		},
	)
}

func connect(t *testing.T, s *Services, req ConnectRequest) (models.Session, models.User) {
	t.Helper()

	session, user, err := s.User.Connect(req)
	if err != nil {
		t.Fatalf("Connect(%+v) error = %v", req, err)
	}
	return session, user
}

func TestConnectCreatesUser(t *testing.T) {
	s := newTestServices(t)

	session, user := connect(t, s, ConnectRequest{Name: "  Ada  "})
	if user.Name != "Ada" {
		t.Errorf("user.Name = %q, want Ada", user.Name)
	}
	if session.UserID != user.ID || !session.Connected {
		t.Errorf("session = %+v", session)
	}

	_, anonymous := connect(t, s, ConnectRequest{})
	if anonymous.Name == "" {
		t.Error("anonymous user did not get a generated name")
	}
	if anonymous.ID == user.ID {
		t.Error("second connect reused the first user")
	}
}

func TestConnectReconnectResolvesSameUser(t *testing.T) {
	s := newTestServices(t)

	session, user := connect(t, s, ConnectRequest{Name: "Ada"})
	token, err := s.User.IssueToken(session)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := s.User.Disconnect(session.ID); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}

	resumed, again := connect(t, s, ConnectRequest{SessionToken: token, Name: "Someone Else"})
	if resumed.ID != session.ID {
		t.Errorf("resumed session = %q, want %q", resumed.ID, session.ID)
	}
	if again.ID != user.ID || again.Name != "Ada" {
		t.Errorf("reconnect returned user %+v, want %+v", again, user)
	}
	if !resumed.Connected {
		t.Error("resumed session not marked connected")
	}
}

func TestConnectExpiredTokenResolvesSameUser(t *testing.T) {
	s := newTestServices(t)
	session, user := connect(t, s, ConnectRequest{Name: "Ada"})
	s.User.Disconnect(session.ID)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, utils.Claims{
		SessionID: session.ID,
		UserID:    user.ID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	})
	token, err := expired.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	fresh, again, err := s.User.Connect(ConnectRequest{SessionToken: token})
	if err != nil {
		t.Fatalf("Connect(expired token) error = %v", err)
	}
	if again.ID != user.ID || again.Name != "Ada" {
		t.Errorf("user = %+v, want %+v", again, user)
	}
	if fresh.ID == session.ID {
		t.Error("expired session was resumed")
	}
}

func TestConnectSameTokenTwiceGetsSeparateSessions(t *testing.T) {
	s := newTestServices(t)
	session, user := connect(t, s, ConnectRequest{Name: "Ada"})
	token, _ := s.User.IssueToken(session)

	second, same := connect(t, s, ConnectRequest{SessionToken: token})
	if same.ID != user.ID {
		t.Fatalf("user = %q, want %q", same.ID, user.ID)
	}
	if second.ID == session.ID {
		t.Fatal("second tab shares the first tab's session")
	}

	// 第二個分頁斷線不影響第一個
	if _, err := s.User.Disconnect(second.ID); err != nil {
		t.Fatal(err)
	}
	first, err := s.User.GetSession(session.ID)
	if err != nil || !first.Connected {
		t.Errorf("first session = %+v, %v, want still connected", first, err)
	}
}

func TestConnectWithUserTokenBindsNewSession(t *testing.T) {
	s := newTestServices(t)

	first, user := connect(t, s, ConnectRequest{Name: "Ada"})
	second, same := connect(t, s, ConnectRequest{UserToken: user.ID})

	if second.ID == first.ID {
		t.Error("new device reused the old session")
	}
	if same.ID != user.ID {
		t.Errorf("user = %q, want %q", same.ID, user.ID)
	}
}

func TestConnectUnknownSessionFallsBackToTokenUser(t *testing.T) {
	s := newTestServices(t)
	_, user := connect(t, s, ConnectRequest{Name: "Ada"})

	token, err := s.User.IssueToken(models.Session{ID: "gone", UserID: user.ID})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	_, again := connect(t, s, ConnectRequest{SessionToken: token})
	if again.ID != user.ID {
		t.Errorf("user = %q, want %q", again.ID, user.ID)
	}
}

func TestConnectMalformedTokens(t *testing.T) {
	s := newTestServices(t)

	tests := []struct {
		name string
		req  ConnectRequest
	}{
		{"session token", ConnectRequest{SessionToken: "garbage"}},
		{"user token", ConnectRequest{UserToken: "!!"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.User.Connect(tt.req)
			if !IsIdentityError(err) {
				t.Fatalf("Connect() error = %v, want identity error", err)
			}
			if !errors.Is(err, models.ErrMalformedToken) {
				t.Errorf("Connect() error = %v, want ErrMalformedToken cause", err)
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServices(t)
	_, user := connect(t, s, ConnectRequest{Name: "Ada"})

	updated, err := s.User.UpdateProfile(user.ID, "Ada L.", "ada@example.com")
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Name != "Ada L." || updated.Email != "ada@example.com" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Avatar != models.AvatarToken("ada@example.com") {
		t.Errorf("avatar = %q, not recomputed", updated.Avatar)
	}

	if _, err := s.User.UpdateProfile("missing", "x", ""); !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("UpdateProfile(missing) error = %v, want ErrUserNotFound", err)
	}
}

func TestCreateRoomAndJoin(t *testing.T) {
	s := newTestServices(t)

	if _, err := s.Room.CreateRoom("x", "chess"); !errors.Is(err, models.ErrInvalidMode) {
		t.Fatalf("CreateRoom(chess) error = %v, want ErrInvalidMode", err)
	}

	room, err := s.Room.CreateRoom("Sprint 12", "Effort")
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if room.Mode != models.ModeEffort {
		t.Errorf("mode = %q", room.Mode)
	}

	if _, err := s.Room.Join("missing", "u"); !errors.Is(err, models.ErrRoomNotFound) {
		t.Errorf("Join(missing) error = %v, want ErrRoomNotFound", err)
	}

	_, a := connect(t, s, ConnectRequest{Name: "A"})
	_, b := connect(t, s, ConnectRequest{Name: "B"})
	if _, err := s.Room.Join(room.ID, a.ID); err != nil {
		t.Fatalf("Join(a) error = %v", err)
	}
	snap, err := s.Room.Join(room.ID, b.ID)
	if err != nil {
		t.Fatalf("Join(b) error = %v", err)
	}
	if len(snap.Members) != 2 {
		t.Errorf("members = %d, want 2", len(snap.Members))
	}
	if snap.Current != nil {
		t.Errorf("current round = %+v, want none", snap.Current)
	}

	// 重複加入不會增加成員
	snap, _ = s.Room.Join(room.ID, b.ID)
	if len(snap.Members) != 2 {
		t.Errorf("members after rejoin = %d, want 2", len(snap.Members))
	}
}

func TestPlanningScenario(t *testing.T) {
	s := newTestServices(t)
	room, _ := s.Room.CreateRoom("R", "effort")
	_, a := connect(t, s, ConnectRequest{Name: "A"})
	_, b := connect(t, s, ConnectRequest{Name: "B"})
	s.Room.Join(room.ID, a.ID)
	s.Room.Join(room.ID, b.ID)

	first, err := s.Round.StartRound(room.ID, models.RoundOptions{})
	if err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	if first.Current.Name != "Round #1" {
		t.Errorf("first round = %q", first.Current.Name)
	}

	if _, err := s.Round.EndVote(room.ID); !errors.Is(err, models.ErrNoVotes) {
		t.Fatalf("EndVote() with no votes error = %v, want ErrNoVotes", err)
	}

	if _, _, err := s.Round.CastVote(room.ID, a.ID, "5"); err != nil {
		t.Fatalf("CastVote(a) error = %v", err)
	}
	if _, err := s.Round.EndVote(room.ID); !errors.Is(err, models.ErrIncompleteVotes) {
		t.Fatalf("EndVote() with one vote error = %v, want ErrIncompleteVotes", err)
	}
	if _, err := s.Round.StartRound(room.ID, models.RoundOptions{}); !errors.Is(err, models.ErrRoundNotDone) {
		t.Fatalf("StartRound() before flip error = %v, want ErrRoundNotDone", err)
	}

	vote, board, err := s.Round.CastVote(room.ID, b.ID, "coffee")
	if err != nil {
		t.Fatalf("CastVote(b) error = %v", err)
	}
	if vote.Score.Kind != models.ScoreCoffee || len(board) != 2 {
		t.Errorf("vote = %+v, board = %d", vote, len(board))
	}

	revealed, err := s.Round.EndVote(room.ID)
	if err != nil {
		t.Fatalf("EndVote() error = %v", err)
	}
	if !revealed.Flipped {
		t.Error("round not flipped")
	}

	next, err := s.Round.StartRound(room.ID, models.RoundOptions{Type: "percent"})
	if err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	if next.Current.Name != "Round #2" || next.Current.Flipped {
		t.Errorf("next round = %+v", next.Current)
	}
	if len(next.Archived) != 1 || next.Archived[0].Name != "Round #1" || len(next.Archived[0].Votes) != 2 {
		t.Errorf("archived = %+v", next.Archived)
	}
	if got := s.Round.Votes(room.ID); len(got) != 0 {
		t.Errorf("board not reset: %+v", got)
	}
}

func TestCastVoteInvalidScore(t *testing.T) {
	s := newTestServices(t)
	room, _ := s.Room.CreateRoom("R", "retro")

	if _, _, err := s.Round.CastVote(room.ID, "u", "banana"); !errors.Is(err, models.ErrInvalidScore) {
		t.Errorf("CastVote(banana) error = %v, want ErrInvalidScore", err)
	}
	if _, _, err := s.Round.CastVote("missing", "u", "3"); !errors.Is(err, models.ErrRoomNotFound) {
		t.Errorf("CastVote(missing room) error = %v, want ErrRoomNotFound", err)
	}
}

func TestPostMessage(t *testing.T) {
	s := newTestServices(t)
	room, _ := s.Room.CreateRoom("R", "retro")

	if _, err := s.Message.Post(room.ID, "u", "   "); !errors.Is(err, models.ErrEmptyMessage) {
		t.Errorf("Post(blank) error = %v, want ErrEmptyMessage", err)
	}
	if _, err := s.Message.Post("missing", "u", "hi"); !errors.Is(err, models.ErrRoomNotFound) {
		t.Errorf("Post(missing room) error = %v, want ErrRoomNotFound", err)
	}
	if _, err := s.Message.Post(room.ID, "u", "hi"); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if got := s.Message.History(room.ID); len(got) != 1 || got[0].From != "u" {
		t.Errorf("history = %+v", got)
	}
}

func TestWebSocketManagerRooms(t *testing.T) {
	m := newTestServices(t).WebSocket
	a := m.Register(nil, models.Session{ID: "s1"})
	b := m.Register(nil, models.Session{ID: "s2"})

	m.JoinOnly(a.ID, "r1")
	m.JoinOnly(b.ID, "r1")
	m.JoinOnly(a.ID, "r2")

	if rooms := m.RoomsOf(a.ID); len(rooms) != 1 || rooms[0] != "r2" {
		t.Errorf("RoomsOf(a) = %v, want [r2]", rooms)
	}
	if n := m.GetRoomClients("r1"); n != 1 {
		t.Errorf("GetRoomClients(r1) = %d, want 1", n)
	}

	m.EmitRoom("r1", "votes", []models.VoteDTO{})
	m.Emit(a.ID, "vote", models.VoteDTO{UserID: "u", Score: "3"})
	m.Reply(a.ID, "req-1", OKAck(nil))

	if got := drain(t, b); len(got) != 1 || got[0].Type != "votes" {
		t.Errorf("b received %+v", got)
	}
	got := drain(t, a)
	if len(got) != 2 || got[0].Type != "vote" || got[1].Type != "ack" || got[1].RequestID != "req-1" {
		t.Errorf("a received %+v", got)
	}

	m.EmitAll("user disconnected", models.SessionDTO{SessionID: "s1"})
	if len(drain(t, a)) != 1 || len(drain(t, b)) != 1 {
		t.Error("EmitAll did not reach every client")
	}
}

func TestErrorAck(t *testing.T) {
	ack := ErrorAck(models.ErrIncompleteVotes)
	if ack.Type != "Error" || ack.Code != "INCOMPLETE_VOTES" || ack.Error != "not every member has voted" {
		t.Errorf("ErrorAck() = %+v", ack)
	}

	internal := ErrorAck(errors.New("db exploded"))
	if internal.Error != "internal error" {
		t.Errorf("internal error leaked: %+v", internal)
	}
}

func drain(t *testing.T, c *Client) []Frame {
	t.Helper()

	var frames []Frame
	for {
		select {
		case data := <-c.send:
			var f Frame
			if err := json.Unmarshal(data, &f); err != nil {
				t.Fatalf("decode frame: %v", err)
			}
			frames = append(frames, f)
		default:
			return frames
		}
	}
}
