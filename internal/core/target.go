package core

import "fmt"

type AuthMode string

const (
	AuthDefault AuthMode = "default"
	AuthSysDBA  AuthMode = "sysdba"
	AuthSysOper AuthMode = "sysoper"
)

func ParseAuthMode(s string) (AuthMode, error) {
	switch AuthMode(s) {
	case "", AuthDefault:
		return AuthDefault, nil
	case AuthSysDBA:
		return AuthSysDBA, nil
	case AuthSysOper:
		return AuthSysOper, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q", s)
	}
}

// Target is one database instance under validation. Built once from the
// inventory and never mutated afterwards.
type Target struct {
	ID          string
	Hostname    string
	Port        int
	ServiceName string
	Username    string
	Password    string
	AuthMode    AuthMode
	// Weight of this target in the overall run score. Zero means default (1).
	Weight float64
}

func (t Target) Addr() string {
	return fmt.Sprintf("%s:%d/%s", t.Hostname, t.Port, t.ServiceName)
}
