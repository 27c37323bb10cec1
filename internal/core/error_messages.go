package core

// error_messages.go maps technical errors to messages shown to the operator.
//
// # Error Codes Reference
//
// Each message carries a code the operator can quote to support.
//
//	DB001 duplicate key            DB005 connection reset
//	DB002 unique constraint        DB006 database timeout
//	DB003 foreign key              DB007 deadlock
//	DB004 connection refused       DB008 serialization failure
//
//	VAL001 invalid date            VAL005 referenced option missing
//	VAL002 invalid number          VAL006 expiry before harvest
//	VAL003 required field          VAL007 price not positive
//	VAL004 invalid option id
//
//	PRD001 empty product name      PRD002 product name too long
//	OPT001 unknown category
//	REQ001 request cancelled       REQ002 request timeout
//	REQ003 system busy
//
// # Matching
//
// Known sentinel errors are matched first with errors.Is. Everything else is
// matched case-insensitively against errorPatterns with strings.Contains; the
// first matching pattern wins, so specific patterns come before general ones.
// Unmatched errors map to ERR000; check the logs for the original error.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrEmptyLabel, UserMessage{
		Message: "O nome do produto está vazio",
		Action:  "Digite o nome do novo produto",
		Code:    "PRD001",
	}},
	{ErrLabelTooLong, UserMessage{
		Message: "O nome do produto é longo demais",
		Action:  fmt.Sprintf("Use no máximo %d caracteres", MaxLabelLength),
		Code:    "PRD002",
	}},
	{ErrUnknownCategory, UserMessage{
		Message: "Categoria de opções desconhecida",
		Action:  "Verifique o endereço da requisição",
		Code:    "OPT001",
	}},
	{ErrTooManyWrites, UserMessage{
		Message: "O sistema está ocupado com outros cadastros",
		Action:  "Aguarde um momento e tente novamente",
		Code:    "REQ003",
	}},
	{context.Canceled, UserMessage{
		Message: "A requisição foi cancelada",
		Action:  "Tente novamente",
		Code:    "REQ001",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "A requisição demorou demais",
		Action:  "Verifique sua conexão e tente novamente",
		Code:    "REQ002",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Batch validation (VAL001-VAL007)
	{"invalid date", UserMessage{
		Message: "Data inválida",
		Action:  "Use o formato AAAA-MM-DD ou DD/MM/AAAA",
		Code:    "VAL001",
	}},
	{"invalid number", UserMessage{
		Message: "Número inválido",
		Action:  "Informe a quantidade como inteiro e o preço como 1.234,56",
		Code:    "VAL002",
	}},
	{"required field", UserMessage{
		Message: "Preencha todos os campos obrigatórios",
		Action:  "Os campos marcados com * são obrigatórios",
		Code:    "VAL003",
	}},
	{"invalid option id", UserMessage{
		Message: "Opção selecionada inválida",
		Action:  "Selecione uma opção da lista",
		Code:    "VAL004",
	}},
	{"referenced option does not exist", UserMessage{
		Message: "Uma das opções selecionadas não existe mais",
		Action:  "Recarregue as opções e selecione novamente",
		Code:    "VAL005",
	}},
	{"expiry date is before harvest", UserMessage{
		Message: "A validade não pode ser anterior à colheita",
		Action:  "Corrija as datas do lote",
		Code:    "VAL006",
	}},
	{"price must be greater than zero", UserMessage{
		Message: "O preço deve ser maior que zero",
		Action:  "Informe o preço do produto",
		Code:    "VAL007",
	}},

	// Database constraints (DB001-DB003)
	{"duplicate key", UserMessage{
		Message: "Já existe um registro com este identificador",
		Action:  "Verifique se o registro já foi cadastrado",
		Code:    "DB001",
	}},
	{"unique constraint", UserMessage{
		Message: "Este valor já está cadastrado",
		Action:  "Selecione o registro existente",
		Code:    "DB002",
	}},
	{"violates unique", UserMessage{
		Message: "Este valor já está cadastrado",
		Action:  "Selecione o registro existente",
		Code:    "DB002",
	}},
	{"foreign key", UserMessage{
		Message: "O registro referenciado não existe",
		Action:  "Recarregue as opções e selecione novamente",
		Code:    "DB003",
	}},

	// Database availability (DB004-DB008)
	{"connection refused", UserMessage{
		Message: "Erro na conexão com o banco de dados",
		Action:  "Tente novamente em alguns instantes",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "A conexão com o banco de dados foi interrompida",
		Action:  "Tente novamente",
		Code:    "DB005",
	}},
	{"context canceled", UserMessage{
		Message: "A requisição foi cancelada",
		Action:  "Tente novamente",
		Code:    "REQ001",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "A requisição demorou demais",
		Action:  "Verifique sua conexão e tente novamente",
		Code:    "REQ002",
	}},
	{"timeout", UserMessage{
		Message: "O banco de dados demorou demais para responder",
		Action:  "Tente novamente mais tarde",
		Code:    "DB006",
	}},
	{"deadlock", UserMessage{
		Message: "O banco de dados estava ocupado com operações conflitantes",
		Action:  "Tente novamente",
		Code:    "DB007",
	}},
	{"could not serialize", UserMessage{
		Message: "Os dados mudaram durante a leitura",
		Action:  "Tente novamente",
		Code:    "DB008",
	}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Ocorreu um erro inesperado",
	Action:  "Tente novamente ou contate o suporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns the zero UserMessage for a nil error and ERR000 when nothing matches.
//
//	msg := MapError(fmt.Errorf("create product: %w", ErrEmptyLabel))
//	// msg.Code == "PRD001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with the message shown for it.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
