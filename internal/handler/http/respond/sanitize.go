package respond

import "regexp"

// More specific patterns run first so an Anthropic key is not half-masked as an OpenAI key.
var (
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	googleKeyPattern    = regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`)
	keyParamPattern     = regexp.MustCompile(`([?&]key=)[^&\s"]+`)
	dbPasswordPattern   = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)
)

// SanitizeError masks API keys and DSN passwords in err's message.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = googleKeyPattern.ReplaceAllString(msg, "AIza****")
	msg = keyParamPattern.ReplaceAllString(msg, "${1}****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
