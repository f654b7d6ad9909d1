// Package i18n holds the English and Bulgarian message catalog used for
// client-facing error and status messages, and negotiates the response
// language from the Accept-Language header.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/devcrm/crm-service/internal/core/domain"
)

// Message keys outside the domain reason codes.
const (
	KeyInternal         = "internal_error"
	KeyUnauthorized     = "unauthorized"
	KeyInvalidToken     = "invalid_token"
	KeyForbidden        = "forbidden"
	KeyInvalidPayload   = "invalid_payload"
	KeyValidationFailed = "validation_failed"
	KeyRouteNotFound    = "route_not_found"
	KeyMethodNotAllowed = "method_not_allowed"
	KeyRunning          = "health_running"
)

type translation struct {
	en string
	bg string
}

var messages = map[string]translation{
	string(domain.ReasonNotFound):          {"%s %q not found", "%s %q не е намерен"},
	string(domain.ReasonDuplicate):         {"%s %q already exists", "%s %q вече съществува"},
	string(domain.ReasonUsernameTaken):     {"username %q is already taken", "потребителското име %q вече е заето"},
	string(domain.ReasonEmailTaken):        {"email %q is already in use", "имейлът %q вече се използва"},
	string(domain.ReasonSystemRole):        {"system role %q cannot be deleted", "системната роля %q не може да бъде изтрита"},
	string(domain.ReasonRoleInUse):         {"role %q is assigned to %d user(s)", "ролята %q е присвоена на %d потребител(и)"},
	string(domain.ReasonPrivilegeInUse):    {"privilege %q is granted to %d role(s)", "привилегията %q е дадена на %d роля(и)"},
	string(domain.ReasonBadCredentials):    {"invalid username or password", "невалидно потребителско име или парола"},
	string(domain.ReasonAccountDisabled):   {"account is disabled", "акаунтът е деактивиран"},
	string(domain.ReasonAccountRemoved):    {"account no longer exists", "акаунтът вече не съществува"},
	string(domain.ReasonPasswordTooLong):   {"password must be at most 72 bytes", "паролата трябва да е най-много 72 байта"},
	string(domain.ReasonOwnRole):           {"administrators cannot change their own role", "администраторите не могат да променят собствената си роля"},
	string(domain.ReasonOwnAccount):        {"administrators cannot delete their own account", "администраторите не могат да изтрият собствения си акаунт"},
	string(domain.ReasonForeignPreference): {"you can only change your own preferences", "можете да променяте само собствените си предпочитания"},
	string(domain.ReasonInvalidLanguage):   {"unsupported language %q", "неподдържан език %q"},
	string(domain.ReasonThrottled):         {"too many failed login attempts, try again later", "твърде много неуспешни опити за вход, опитайте по-късно"},

	KeyInternal:         {"internal server error", "вътрешна грешка на сървъра"},
	KeyUnauthorized:     {"authentication required", "изисква се удостоверяване"},
	KeyInvalidToken:     {"invalid or expired token", "невалиден или изтекъл токен"},
	KeyForbidden:        {"access forbidden", "достъпът е забранен"},
	KeyInvalidPayload:   {"invalid payload", "невалидни данни"},
	KeyValidationFailed: {"validation failed", "невалидни полета"},
	KeyRouteNotFound:    {"resource not found", "ресурсът не е намерен"},
	KeyMethodNotAllowed: {"method not allowed", "методът не е разрешен"},
	KeyRunning:          {"CRM service is running", "CRM услугата работи"},

	domain.EntityUser:      {"user", "потребител"},
	domain.EntityRole:      {"role", "роля"},
	domain.EntityPrivilege: {"privilege", "привилегия"},
	domain.EntityCustomer:  {"customer", "клиент"},
}

// Supported lists the response languages; the first is the fallback.
var Supported = []language.Tag{language.English, language.Bulgarian}

var (
	matcher = language.NewMatcher(Supported)
	cat     = buildCatalog()
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, t := range messages {
		if err := b.SetString(language.English, key, t.en); err != nil {
			panic(fmt.Sprintf("i18n: %s: %v", key, err))
		}
		if err := b.SetString(language.Bulgarian, key, t.bg); err != nil {
			panic(fmt.Sprintf("i18n: %s: %v", key, err))
		}
	}
	return b
}

// Negotiate picks the best supported language for an Accept-Language value.
// Empty or unparsable headers select English.
func Negotiate(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// Has reports whether key is a catalog entry.
func Has(key string) bool {
	_, ok := messages[key]
	return ok
}

// Text renders key in tag with the given format arguments.
func Text(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag, message.Catalog(cat)).Sprintf(key, args...)
}

// Error renders a domain error in tag. Each reason consumes only the context
// fields its message references.
func Error(tag language.Tag, de *domain.Error) string {
	key := string(de.Reason)
	switch de.Reason {
	case domain.ReasonNotFound, domain.ReasonDuplicate:
		entity := de.Entity
		if Has(entity) {
			entity = Text(tag, entity)
		}
		return Text(tag, key, entity, de.Key)
	case domain.ReasonUsernameTaken, domain.ReasonEmailTaken, domain.ReasonSystemRole, domain.ReasonInvalidLanguage:
		return Text(tag, key, de.Key)
	case domain.ReasonRoleInUse, domain.ReasonPrivilegeInUse:
		return Text(tag, key, de.Key, de.Count)
	}
	if Has(key) {
		return Text(tag, key)
	}
	return Text(tag, KeyInternal)
}
