package models

// BrandMatch is the result of matching a device against the vendor templates.
type BrandMatch struct {
	Brand       string `json:"brand"`
	Template    string `json:"template"`
	MatchedBy   string `json:"matched_by"`
	SysDescr    string `json:"sys_descr,omitempty"`
	SysObjectID string `json:"sys_object_id,omitempty"`
	SysName     string `json:"sys_name,omitempty"`
}

// DetectRequest carries already-collected system MIB values.
type DetectRequest struct {
	SysDescr    string `json:"sysDescr"`
	SysObjectID string `json:"sysObjectID"`
}

// ProbeRequest asks the server to query a device over SNMP.
type ProbeRequest struct {
	Target    string  `json:"target"`
	Community string  `json:"community,omitempty"`
	Version   string  `json:"version,omitempty"`
	Port      uint16  `json:"port,omitempty"`
	V3        *SNMPv3 `json:"v3,omitempty"`
}

// SNMPv3 holds user-based security model credentials.
type SNMPv3 struct {
	User           string `json:"user" mapstructure:"user"`
	AuthProtocol   string `json:"auth_protocol,omitempty" mapstructure:"auth_protocol"`
	AuthPassphrase string `json:"auth_passphrase,omitempty" mapstructure:"auth_passphrase"`
	PrivProtocol   string `json:"priv_protocol,omitempty" mapstructure:"priv_protocol"`
	PrivPassphrase string `json:"priv_passphrase,omitempty" mapstructure:"priv_passphrase"`
	ContextName    string `json:"context_name,omitempty" mapstructure:"context_name"`
}
