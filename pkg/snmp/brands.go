// Package snmp identifies device vendors from their SNMP system group.
package snmp

import (
	"strings"

	"mibhub/pkg/models"
)

// System group OIDs (RFC 3418).
const (
	OIDSysDescr    = "1.3.6.1.2.1.1.1.0"
	OIDSysObjectID = "1.3.6.1.2.1.1.2.0"
	OIDSysName     = "1.3.6.1.2.1.1.5.0"

	enterprisesPrefix = "1.3.6.1.4.1."
)

// DefaultBrand is returned when no template matches.
const DefaultBrand = "generic"

// BrandTemplate maps a vendor to its monitoring template.
type BrandTemplate struct {
	Brand       string
	Template    string
	Enterprises []string // IANA enterprise numbers under 1.3.6.1.4.1
	Patterns    []string // lowercase sysDescr words, see containsWord
}

// Brands is the ordered detection table. Order matters for sysDescr matching:
// network vendors come before the operating systems they may embed.
var Brands = []BrandTemplate{
	{Brand: "cisco", Template: "cisco-ios", Enterprises: []string{"9"}, Patterns: []string{"cisco"}},
	{Brand: "huawei", Template: "huawei-vrp", Enterprises: []string{"2011"}, Patterns: []string{"huawei", "vrp"}},
	{Brand: "h3c", Template: "h3c-comware", Enterprises: []string{"25506"}, Patterns: []string{"h3c", "comware"}},
	{Brand: "juniper", Template: "juniper-junos", Enterprises: []string{"2636"}, Patterns: []string{"juniper", "junos"}},
	{Brand: "hpe", Template: "hpe-procurve", Enterprises: []string{"11", "14823"}, Patterns: []string{"hewlett", "procurve", "aruba", "hpe"}},
	{Brand: "dell", Template: "dell-idrac", Enterprises: []string{"674", "6027"}, Patterns: []string{"dell", "idrac", "powerconnect"}},
	{Brand: "lenovo", Template: "lenovo-xcc", Enterprises: []string{"19046"}, Patterns: []string{"lenovo", "thinksystem"}},
	{Brand: "inspur", Template: "inspur-bmc", Enterprises: []string{"37945"}, Patterns: []string{"inspur"}},
	{Brand: "zte", Template: "zte-zxr10", Enterprises: []string{"3902"}, Patterns: []string{"zte", "zxr10"}},
	{Brand: "ruijie", Template: "ruijie-rgos", Enterprises: []string{"4881"}, Patterns: []string{"ruijie", "rgos"}},
	{Brand: "fortinet", Template: "fortinet-fortigate", Enterprises: []string{"12356"}, Patterns: []string{"fortigate", "fortinet"}},
	{Brand: "mikrotik", Template: "mikrotik-routeros", Enterprises: []string{"14988"}, Patterns: []string{"routeros", "mikrotik"}},
	{Brand: "windows", Template: "windows-host", Enterprises: []string{"311"}, Patterns: []string{"windows"}},
	{Brand: "linux", Template: "linux-netsnmp", Enterprises: []string{"8072"}, Patterns: []string{"linux"}},
}

// DetectBrand matches a device against Brands. The enterprise number in
// sysObjectID is authoritative and checked first; sysDescr fragments are the
// fallback. The first hit wins, otherwise the generic template is returned.
func DetectBrand(sysDescr, sysObjectID string) *models.BrandMatch {
	match := &models.BrandMatch{
		Brand:       DefaultBrand,
		Template:    DefaultBrand,
		MatchedBy:   "default",
		SysDescr:    sysDescr,
		SysObjectID: sysObjectID,
	}

	if enterprise := EnterpriseNumber(sysObjectID); enterprise != "" {
		for _, tmpl := range Brands {
			for _, number := range tmpl.Enterprises {
				if number == enterprise {
					match.Brand = tmpl.Brand
					match.Template = tmpl.Template
					match.MatchedBy = "sysObjectID"
					return match
				}
			}
		}
	}

	descr := strings.ToLower(sysDescr)
	if descr != "" {
		for _, tmpl := range Brands {
			for _, pattern := range tmpl.Patterns {
				if containsWord(descr, pattern) {
					match.Brand = tmpl.Brand
					match.Template = tmpl.Template
					match.MatchedBy = "sysDescr"
					return match
				}
			}
		}
	}

	return match
}

// containsWord reports whether word occurs in s at the start of a word and is
// not followed by another letter. Trailing digits are allowed, so "idrac"
// matches "idrac9" but "zte" does not match "aztec".
func containsWord(s, word string) bool {
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if (start == 0 || !isAlnum(s[start-1])) && (end == len(s) || !isLetter(s[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z'
}

func isAlnum(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9')
}

// EnterpriseNumber extracts the enterprise number from a sysObjectID.
// Example: "1.3.6.1.4.1.9.1.1208" -> "9". Anything outside the enterprises
// subtree yields "".
func EnterpriseNumber(sysObjectID string) string {
	oid := strings.TrimPrefix(strings.TrimSpace(sysObjectID), ".")
	if !strings.HasPrefix(oid, enterprisesPrefix) {
		return ""
	}

	rest := oid[len(enterprisesPrefix):]
	if idx := strings.IndexByte(rest, '.'); idx >= 0 {
		rest = rest[:idx]
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return rest
}
