package snmp

import (
	"errors"
	"fmt"
	"strings"

	"mibhub/pkg/models"

	"github.com/gosnmp/gosnmp"
)

// ErrInvalidV3 is returned when SNMPv3 credentials are missing or inconsistent.
var ErrInvalidV3 = errors.New("invalid SNMPv3 settings")

var authProtocols = map[string]gosnmp.SnmpV3AuthProtocol{
	"":       gosnmp.NoAuth,
	"none":   gosnmp.NoAuth,
	"md5":    gosnmp.MD5,
	"sha":    gosnmp.SHA,
	"sha1":   gosnmp.SHA,
	"sha224": gosnmp.SHA224,
	"sha256": gosnmp.SHA256,
	"sha384": gosnmp.SHA384,
	"sha512": gosnmp.SHA512,
}

var privProtocols = map[string]gosnmp.SnmpV3PrivProtocol{
	"":        gosnmp.NoPriv,
	"none":    gosnmp.NoPriv,
	"des":     gosnmp.DES,
	"aes":     gosnmp.AES,
	"aes128":  gosnmp.AES,
	"aes192":  gosnmp.AES192,
	"aes256":  gosnmp.AES256,
	"aes192c": gosnmp.AES192C,
	"aes256c": gosnmp.AES256C,
}

// applyUSM configures params for the user-based security model. The security
// level follows from the protocols given: none, auth only, or auth and priv.
func applyUSM(params *gosnmp.GoSNMP, creds models.SNMPv3) error {
	user := strings.TrimSpace(creds.User)
	if user == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidV3)
	}

	auth, ok := authProtocols[strings.ToLower(strings.TrimSpace(creds.AuthProtocol))]
	if !ok {
		return fmt.Errorf("%w: unknown auth protocol %q", ErrInvalidV3, creds.AuthProtocol)
	}
	priv, ok := privProtocols[strings.ToLower(strings.TrimSpace(creds.PrivProtocol))]
	if !ok {
		return fmt.Errorf("%w: unknown priv protocol %q", ErrInvalidV3, creds.PrivProtocol)
	}

	flags := gosnmp.NoAuthNoPriv
	switch {
	case priv != gosnmp.NoPriv && auth == gosnmp.NoAuth:
		return fmt.Errorf("%w: privacy requires an auth protocol", ErrInvalidV3)
	case priv != gosnmp.NoPriv:
		flags = gosnmp.AuthPriv
	case auth != gosnmp.NoAuth:
		flags = gosnmp.AuthNoPriv
	}

	if auth != gosnmp.NoAuth && creds.AuthPassphrase == "" {
		return fmt.Errorf("%w: auth passphrase is required", ErrInvalidV3)
	}
	if priv != gosnmp.NoPriv && creds.PrivPassphrase == "" {
		return fmt.Errorf("%w: priv passphrase is required", ErrInvalidV3)
	}

	params.SecurityModel = gosnmp.UserSecurityModel
	params.MsgFlags = flags
	params.ContextName = creds.ContextName
	params.SecurityParameters = &gosnmp.UsmSecurityParameters{
		UserName:                 user,
		AuthenticationProtocol:   auth,
		AuthenticationPassphrase: creds.AuthPassphrase,
		PrivacyProtocol:          priv,
		PrivacyPassphrase:        creds.PrivPassphrase,
	}
	return nil
}
