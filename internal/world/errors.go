package world

// UserError is a failure whose message is sent to the client verbatim.
// Anything else is a system error: logged, and reported to the client as a
// generic internal failure. Messages are part of the wire contract and stay
// in the client's language.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a client-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}

var (
	ErrUnauthenticated    = &UserError{Message: "Não autenticado"}
	ErrMissingCharacterID = &UserError{Message: "ID do personagem é obrigatório"}
	ErrCharacterRequired  = &UserError{Message: "Nome, classe e raça são obrigatórios"}
	ErrCharacterNotFound  = &UserError{Message: "Personagem não encontrado"}
)
