package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/pixil98/go-mmo/internal/gamedata"
	"github.com/pixil98/go-mmo/internal/presence"
	"github.com/pixil98/go-mmo/internal/world"
	"github.com/pixil98/go-testutil"
)

type fakeSender struct {
	mu    sync.Mutex
	sends []sentEvent
}

type sentEvent struct {
	event   string
	payload any
}

func (f *fakeSender) Send(event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentEvent{event: event, payload: payload})
	return nil
}

func (f *fakeSender) sent() []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends
}

// lastResult unwraps the single-element response array of the last send.
func (f *fakeSender) lastResult(t *testing.T) (string, any) {
	t.Helper()
	sends := f.sent()
	if len(sends) == 0 {
		t.Fatal("no reply sent")
	}
	last := sends[len(sends)-1]
	arr, ok := last.payload.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("expected single-element reply array, got %#v", last.payload)
	}
	return last.event, arr[0]
}

type fakeAccounts struct {
	accounts map[string]*gamedata.Account
}

func (f *fakeAccounts) Get(id string) (*gamedata.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", id, gamedata.ErrAccountNotFound)
	}
	return a, nil
}

type fakeChars struct {
	chars     map[string]*gamedata.Character
	createErr error
}

func (f *fakeChars) Load(id string) (*gamedata.Character, error) {
	c, ok := f.chars[id]
	if !ok {
		return nil, fmt.Errorf("character %q: %w", id, gamedata.ErrCharacterNotFound)
	}
	return c, nil
}

func (f *fakeChars) ByAccount(accountID string) []*gamedata.Character {
	var out []*gamedata.Character
	for _, c := range f.chars {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeChars) Create(accountID, name, classe, race string) (*gamedata.Character, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := &gamedata.Character{
		ID: fmt.Sprintf("char-%d", len(f.chars)+1), AccountID: accountID,
		Name: name, Classe: classe, Race: race, Level: 1, Map: "Gludin",
	}
	f.chars[c.ID] = c
	return c, nil
}

type fakeServers struct {
	servers []*gamedata.ServerInfo
	err     error
}

func (f *fakeServers) List() ([]*gamedata.ServerInfo, error) {
	return f.servers, f.err
}

type fakeMonsters struct{}

func (fakeMonsters) ByMap(string) []*gamedata.Monster { return []*gamedata.Monster{} }

type fakePublisher struct{}

func (fakePublisher) Publish(string, []byte) error { return nil }

type dispatchFixture struct {
	registry   *presence.Registry
	sessions   *world.Sessions
	accounts   *fakeAccounts
	chars      *fakeChars
	servers    *fakeServers
	dispatcher *Dispatcher
}

func newDispatchFixture() *dispatchFixture {
	f := &dispatchFixture{
		registry: presence.NewRegistry(),
		sessions: world.NewSessions(),
		accounts: &fakeAccounts{accounts: map[string]*gamedata.Account{
			"acct-1": {Username: "aria"},
		}},
		chars:   &fakeChars{chars: map[string]*gamedata.Character{}},
		servers: &fakeServers{},
	}
	directory := world.NewDirectory(fakePublisher{})
	coord := world.NewCoordinator(f.registry, directory, f.sessions, f.chars, fakeMonsters{})
	f.dispatcher = NewDispatcher(f.registry, coord, f.accounts, f.chars, f.servers)
	return f
}

func (f *dispatchFixture) session(connID string) (*world.Session, *fakeSender) {
	sender := &fakeSender{}
	sess := world.NewSession(connID, sender)
	f.sessions.Add(sess)
	f.registry.Connect(connID)
	return sess, sender
}

func (f *dispatchFixture) dispatch(sess *world.Session, event string, payload any) {
	data, _ := json.Marshal(payload)
	f.dispatcher.Dispatch(context.Background(), sess, event, data)
}

func TestDispatch_UnknownEventIsDropped(t *testing.T) {
	f := newDispatchFixture()
	sess, sender := f.session("c1")

	f.dispatch(sess, "cast_spell", map[string]string{})

	testutil.AssertEqual(t, "sends", len(sender.sent()), 0)
}

func TestDispatch_Authenticate(t *testing.T) {
	tests := map[string]struct {
		payload    any
		expSuccess bool
		expError   string
	}{
		"known account": {
			payload:    map[string]string{"accountId": "acct-1"},
			expSuccess: true,
		},
		"unknown account": {
			payload:  map[string]string{"accountId": "acct-9"},
			expError: "Conta não encontrada",
		},
		"missing account id": {
			payload:  map[string]string{},
			expError: "ID da conta é obrigatório",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newDispatchFixture()
			sess, sender := f.session("c1")

			f.dispatch(sess, "authenticate", tt.payload)

			event, result := sender.lastResult(t)
			testutil.AssertEqual(t, "reply event", event, "authenticate_response")

			if tt.expSuccess {
				reply, ok := result.(authenticateReply)
				if !ok {
					t.Fatalf("unexpected reply type %T", result)
				}
				testutil.AssertEqual(t, "success", reply.Success, true)
				testutil.AssertEqual(t, "username", reply.Username, "aria")
				testutil.AssertEqual(t, "authenticated", f.registry.CountAuthenticated(), 1)
				testutil.AssertEqual(t, "session account", sess.AccountID(), "acct-1")
			} else {
				fail, ok := result.(failure)
				if !ok {
					t.Fatalf("unexpected reply type %T", result)
				}
				testutil.AssertEqual(t, "error", fail.Error, tt.expError)
				testutil.AssertEqual(t, "authenticated", f.registry.CountAuthenticated(), 0)
			}
		})
	}
}

func TestDispatch_GetServers(t *testing.T) {
	f := newDispatchFixture()
	f.servers.servers = []*gamedata.ServerInfo{
		{ID: 1, Name: "Server 1 - Gludin", Status: "online", PlayerCount: 12, MaxPlayers: 1000},
	}
	sess, sender := f.session("c1")

	f.dispatch(sess, "get_servers", nil)

	_, result := sender.lastResult(t)
	reply := result.(serversReply)
	testutil.AssertEqual(t, "success", reply.Success, true)
	testutil.AssertEqual(t, "server count", len(reply.Servers), 1)
	testutil.AssertEqual(t, "server name", reply.Servers[0].Name, "Server 1 - Gludin")
}

func TestDispatch_GetServersFallback(t *testing.T) {
	f := newDispatchFixture()
	f.servers.err = fmt.Errorf("status table unavailable")

	// Two players in world; the fallback substitutes live occupancy.
	f.registry.MarkAuthenticated("p1")
	f.registry.MarkInWorld("p1")
	f.registry.MarkAuthenticated("p2")
	f.registry.MarkInWorld("p2")

	sess, sender := f.session("c1")
	f.dispatch(sess, "get_servers", nil)

	_, result := sender.lastResult(t)
	reply := result.(serversReply)
	testutil.AssertEqual(t, "success", reply.Success, true)
	testutil.AssertEqual(t, "server count", len(reply.Servers), 3)
	testutil.AssertEqual(t, "server 1 occupancy", reply.Servers[0].PlayerCount, 2)
	testutil.AssertEqual(t, "server 2 occupancy", reply.Servers[1].PlayerCount, 1)
	testutil.AssertEqual(t, "server 3 status", reply.Servers[2].Status, "maintenance")
}

func TestDispatch_CreateCharacter(t *testing.T) {
	tests := map[string]struct {
		authenticate bool
		payload      any
		expError     string
	}{
		"success": {
			authenticate: true,
			payload:      map[string]string{"name": "Aria", "classe": "mystic", "race": "elf"},
		},
		"unauthenticated": {
			payload:  map[string]string{"name": "Aria", "classe": "mystic", "race": "elf"},
			expError: "Não autenticado",
		},
		"missing fields": {
			authenticate: true,
			payload:      map[string]string{"name": "Aria"},
			expError:     "Nome, classe e raça são obrigatórios",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newDispatchFixture()
			sess, sender := f.session("c1")
			if tt.authenticate {
				f.dispatch(sess, "authenticate", map[string]string{"accountId": "acct-1"})
			}

			f.dispatch(sess, "create_character", tt.payload)

			event, result := sender.lastResult(t)
			testutil.AssertEqual(t, "reply event", event, "create_character_response")

			if tt.expError != "" {
				fail := result.(failure)
				testutil.AssertEqual(t, "error", fail.Error, tt.expError)
				return
			}

			reply := result.(characterReply)
			testutil.AssertEqual(t, "success", reply.Success, true)
			testutil.AssertEqual(t, "name", reply.Character.Name, "Aria")
			testutil.AssertEqual(t, "level", reply.Character.Level, 1)
			testutil.AssertEqual(t, "account", reply.Character.AccountID, "acct-1")
		})
	}
}

func TestDispatch_CreateCharacterStoreFailureIsInternal(t *testing.T) {
	f := newDispatchFixture()
	f.chars.createErr = fmt.Errorf("disk full")
	sess, sender := f.session("c1")
	f.dispatch(sess, "authenticate", map[string]string{"accountId": "acct-1"})

	f.dispatch(sess, "create_character",
		map[string]string{"name": "Aria", "classe": "mystic", "race": "elf"})

	_, result := sender.lastResult(t)
	fail := result.(failure)
	// Internal failures never leak their message to the client.
	testutil.AssertEqual(t, "error", fail.Error, "Erro interno do servidor")
}

func TestDispatch_GetCharacters(t *testing.T) {
	f := newDispatchFixture()
	f.chars.chars["42"] = &gamedata.Character{
		ID: "42", AccountID: "acct-1", Name: "Aria", Classe: "mystic",
		Race: "elf", Level: 7, Map: "Dion",
	}
	f.chars.chars["43"] = &gamedata.Character{
		ID: "43", AccountID: "acct-2", Name: "Brakk", Classe: "warrior",
		Race: "orc", Level: 3, Map: "Dion",
	}

	sess, sender := f.session("c1")
	f.dispatch(sess, "authenticate", map[string]string{"accountId": "acct-1"})
	f.dispatch(sess, "get_characters", nil)

	_, result := sender.lastResult(t)
	reply := result.(charactersReply)
	testutil.AssertEqual(t, "success", reply.Success, true)
	testutil.AssertEqual(t, "character count", len(reply.Characters), 1)
	testutil.AssertEqual(t, "character id", reply.Characters[0].ID, "42")
}

func TestDispatch_SelectCharacter(t *testing.T) {
	f := newDispatchFixture()
	f.chars.chars["42"] = &gamedata.Character{
		ID: "42", AccountID: "acct-1", Name: "Aria", Classe: "mystic",
		Race: "elf", Level: 7, Map: "Dion",
	}

	sess, sender := f.session("c1")
	f.dispatch(sess, "authenticate", map[string]string{"accountId": "acct-1"})
	f.dispatch(sess, "select_character", map[string]string{"characterId": "42"})

	_, result := sender.lastResult(t)
	reply := result.(characterReply)
	testutil.AssertEqual(t, "success", reply.Success, true)
	testutil.AssertEqual(t, "attached character", sess.Character().ID, "42")

	f.dispatch(sess, "select_character", map[string]string{"characterId": "99"})
	_, result = sender.lastResult(t)
	fail := result.(failure)
	testutil.AssertEqual(t, "error", fail.Error, "Personagem não encontrado")
}

func TestDispatch_EnterWorldUnauthenticated(t *testing.T) {
	f := newDispatchFixture()
	sess, sender := f.session("c1")

	f.dispatch(sess, "enter_world", map[string]string{"characterId": "42"})

	event, result := sender.lastResult(t)
	testutil.AssertEqual(t, "reply event", event, "enter_world_response")
	fail := result.(failure)
	testutil.AssertEqual(t, "error", fail.Error, "Não autenticado")
	testutil.AssertEqual(t, "in world", f.registry.CountInWorld(), 0)
}

func TestDispatch_EnterWorldSuccessRepliesOnce(t *testing.T) {
	f := newDispatchFixture()
	f.chars.chars["42"] = &gamedata.Character{
		ID: "42", AccountID: "acct-1", Name: "Aria", Classe: "mystic",
		Race: "elf", Level: 7, PosX: 10, PosZ: 5, Map: "Dion",
	}

	sess, sender := f.session("c1")
	f.dispatch(sess, "authenticate", map[string]string{"accountId": "acct-1"})
	f.dispatch(sess, "enter_world", map[string]string{"characterId": "42"})

	// The coordinator replies itself; the dispatcher must not double-send.
	var replies int
	for _, s := range sender.sent() {
		if s.event == "enter_world_response" {
			replies++
		}
	}
	testutil.AssertEqual(t, "enter_world replies", replies, 1)
	testutil.AssertEqual(t, "in world", f.registry.CountInWorld(), 1)
}
