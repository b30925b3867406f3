package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pixil98/go-mmo/internal/gamedata"
	"github.com/pixil98/go-mmo/internal/world"
)

type authenticateRequest struct {
	AccountID string `json:"accountId"`
}

type authenticateReply struct {
	Success   bool   `json:"success"`
	AccountID string `json:"accountId"`
	Username  string `json:"username"`
}

// handleAuthenticate binds an account to the connection. Credentials were
// already verified by the login service; only existence is checked here.
func (d *Dispatcher) handleAuthenticate(ctx context.Context, sess *world.Session, data json.RawMessage) (any, error) {
	var req authenticateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, world.NewUserError("Dados inválidos")
	}
	if req.AccountID == "" {
		return nil, world.NewUserError("ID da conta é obrigatório")
	}

	account, err := d.accounts.Get(req.AccountID)
	if err != nil {
		if errors.Is(err, gamedata.ErrAccountNotFound) {
			return nil, world.NewUserError("Conta não encontrada")
		}
		return nil, fmt.Errorf("loading account: %w", err)
	}

	sess.SetAccount(req.AccountID)
	d.registry.MarkAuthenticated(sess.ID())

	return authenticateReply{
		Success:   true,
		AccountID: req.AccountID,
		Username:  account.Username,
	}, nil
}
