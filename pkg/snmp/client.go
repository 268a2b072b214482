package snmp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mibhub/pkg/log"
	"mibhub/pkg/models"

	"github.com/gosnmp/gosnmp"
)

const (
	defaultPort      = 161
	defaultCommunity = "public"
	defaultTimeout   = 5 * time.Second
	defaultRetries   = 1
)

// ErrNoResponse is returned when the agent answered without usable system values.
var ErrNoResponse = errors.New("no sysDescr or sysObjectID in response")

// Client is the subset of gosnmp used by the prober.
type Client interface {
	Connect() error
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	Close() error
}

type gosnmpClient struct {
	conn *gosnmp.GoSNMP
}

func (c *gosnmpClient) Connect() error {
	return c.conn.Connect()
}

func (c *gosnmpClient) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	return c.conn.Get(oids)
}

func (c *gosnmpClient) Close() error {
	if c.conn.Conn == nil {
		return nil
	}
	return c.conn.Conn.Close()
}

// Config holds default connection parameters for probes. V3 is used for
// SNMPv3 probes that carry no credentials of their own.
type Config struct {
	Community string
	Version   string
	Timeout   time.Duration
	Retries   int
	V3        models.SNMPv3
}

// ClientFactory builds a client from fully populated connection parameters.
// Tests replace it.
type ClientFactory func(ctx context.Context, params *gosnmp.GoSNMP) Client

func newGosnmpClient(_ context.Context, params *gosnmp.GoSNMP) Client {
	return &gosnmpClient{conn: params}
}

// Prober queries the system group of a device and detects its brand.
type Prober struct {
	cfg     Config
	factory ClientFactory
}

// NewProber creates a prober with the given defaults.
func NewProber(cfg Config) *Prober {
	if cfg.Community == "" {
		cfg.Community = defaultCommunity
	}
	if cfg.Version == "" {
		cfg.Version = "2c"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = defaultRetries
	}
	return &Prober{cfg: cfg, factory: newGosnmpClient}
}

// WithClientFactory swaps the client constructor.
func (p *Prober) WithClientFactory(factory ClientFactory) *Prober {
	p.factory = factory
	return p
}

// ParseVersion converts "1", "2c" or "3" into a gosnmp version.
func ParseVersion(version string) (gosnmp.SnmpVersion, error) {
	switch strings.ToLower(strings.TrimSpace(version)) {
	case "1", "v1":
		return gosnmp.Version1, nil
	case "", "2", "2c", "v2c":
		return gosnmp.Version2c, nil
	case "3", "v3":
		return gosnmp.Version3, nil
	default:
		return 0, fmt.Errorf("unsupported SNMP version: %s", version)
	}
}

// params builds the gosnmp connection for req, falling back to the defaults.
func (p *Prober) params(ctx context.Context, req models.ProbeRequest) (*gosnmp.GoSNMP, error) {
	versionStr := req.Version
	if versionStr == "" {
		versionStr = p.cfg.Version
	}
	version, err := ParseVersion(versionStr)
	if err != nil {
		return nil, err
	}
	port := req.Port
	if port == 0 {
		port = defaultPort
	}

	params := &gosnmp.GoSNMP{
		Context: ctx,
		Target:  req.Target,
		Port:    port,
		Version: version,
		Timeout: p.cfg.Timeout,
		Retries: p.cfg.Retries,
	}

	if version != gosnmp.Version3 {
		params.Community = req.Community
		if params.Community == "" {
			params.Community = p.cfg.Community
		}
		return params, nil
	}

	creds := p.cfg.V3
	if req.V3 != nil {
		creds = *req.V3
	}
	if err := applyUSM(params, creds); err != nil {
		return nil, err
	}
	return params, nil
}

// Probe fetches sysDescr, sysObjectID and sysName from the target and runs DetectBrand.
func (p *Prober) Probe(ctx context.Context, req models.ProbeRequest) (*models.BrandMatch, error) {
	if strings.TrimSpace(req.Target) == "" {
		return nil, errors.New("target is required")
	}

	params, err := p.params(ctx, req)
	if err != nil {
		return nil, err
	}

	client := p.factory(ctx, params)
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", req.Target, err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("target", req.Target).Msg("Failed to close SNMP connection")
		}
	}()

	packet, err := client.Get([]string{OIDSysDescr, OIDSysObjectID, OIDSysName})
	if err != nil {
		return nil, fmt.Errorf("get system group from %s: %w", req.Target, err)
	}

	var sysDescr, sysObjectID, sysName string
	for _, pdu := range packet.Variables {
		switch strings.TrimPrefix(pdu.Name, ".") {
		case OIDSysDescr:
			sysDescr = pduString(pdu)
		case OIDSysObjectID:
			sysObjectID = pduString(pdu)
		case OIDSysName:
			sysName = pduString(pdu)
		}
	}

	if sysDescr == "" && sysObjectID == "" {
		return nil, ErrNoResponse
	}

	match := DetectBrand(sysDescr, sysObjectID)
	match.SysName = sysName

	log.Debug().
		Str("target", req.Target).
		Str("brand", match.Brand).
		Str("matched_by", match.MatchedBy).
		Msg("SNMP probe complete")

	return match, nil
}

func pduString(pdu gosnmp.SnmpPDU) string {
	switch pdu.Type {
	case gosnmp.OctetString:
		if b, ok := pdu.Value.([]byte); ok {
			return strings.TrimSpace(string(b))
		}
	case gosnmp.ObjectIdentifier:
		if s, ok := pdu.Value.(string); ok {
			return strings.TrimPrefix(s, ".")
		}
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.Null:
		return ""
	}
	if pdu.Value == nil {
		return ""
	}
	return fmt.Sprint(pdu.Value)
}
