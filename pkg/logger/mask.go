package logger

import "strings"

// MaskPassword hides the password in both key=value and URL style DSNs.
func MaskPassword(dsn string) string {
	if start := strings.Index(dsn, "password="); start != -1 {
		start += len("password=")
		end := start
		for end < len(dsn) && dsn[end] != ' ' && dsn[end] != '&' {
			end++
		}
		return dsn[:start] + "***" + dsn[end:]
	}

	scheme := strings.Index(dsn, "://")
	at := strings.LastIndex(dsn, "@")
	if scheme == -1 || at == -1 || at < scheme {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	colon := strings.Index(userinfo, ":")
	if colon == -1 {
		return dsn
	}
	return dsn[:scheme+3+colon+1] + "***" + dsn[at:]
}
