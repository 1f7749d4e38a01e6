package http

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// loginPageData feeds the login template. Error and Notice carry the
// flash-style messages resolved from the redirect query parameters.
type loginPageData struct {
	Error  string
	Notice string
}

type portalPageData struct {
	Name string
}

// Flash messages keyed by the short codes carried in redirect URLs. Anything
// unknown falls back to the generic system error so upstream details never
// reach the user.
var flashMessages = map[string]string{
	"missing_fields":      "Código e senha são obrigatórios!",
	"invalid_credentials": "Código ou senha inválidos.",
	"system_error":        "Erro crítico no sistema. Tente novamente mais tarde.",
	"access_denied":       "Sua conta não tem permissão para acessar o portal.",
	"email_not_verified":  "Verifique seu endereço de e-mail do Google antes de entrar.",
	"oauth_error":         "Não foi possível entrar com o Google. Tente novamente.",
	"google_unavailable":  "Login com Google não está disponível no momento.",
}

var noticeMessages = map[string]string{
	"logged_out":     "Você foi desconectado com sucesso.",
	"login_required": "Você precisa fazer login para acessar esta página.",
}

func flashMessage(code string) string {
	if code == "" {
		return ""
	}
	if msg, ok := flashMessages[code]; ok {
		return msg
	}
	return flashMessages["system_error"]
}

func noticeMessage(code string) string {
	if code == "" {
		return ""
	}
	return noticeMessages[code]
}

func renderPage(w http.ResponseWriter, logger *slog.Logger, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		logger.Error("render template", "template", name, "error", err)
	}
}
