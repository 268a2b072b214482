// Package registry holds the in-memory inventory of monitored hosts and host groups.
// Nothing is persisted: the inventory is rebuilt by discovery calls after a restart.
package registry

import (
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"mibhub/pkg/models"

	"github.com/google/uuid"
)

// Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	hosts  map[string]*models.Host
	byIP   map[string]string
	groups map[string]*models.HostGroup
	now    func() time.Time
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		hosts:  make(map[string]*models.Host),
		byIP:   make(map[string]string),
		groups: make(map[string]*models.HostGroup),
		now:    time.Now,
	}
}

// Discover registers a new host from a discovery request.
func (r *Registry) Discover(req *models.DiscoverRequest) (*models.Host, error) {
	parsed := net.ParseIP(strings.TrimSpace(req.IP))
	if parsed == nil {
		return nil, fmt.Errorf("%w: ip %q is not a valid address", ErrInvalidHost, req.IP)
	}
	// Canonical form: v4-mapped addresses collapse to dotted quad, v6 is
	// lowercased and compressed.
	ip := parsed.String()

	hostname := strings.TrimSpace(req.Hostname)
	if hostname == "" {
		hostname = ip
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byIP[ip]; ok {
		return nil, fmt.Errorf("%w: %s is host %s", ErrHostExists, ip, existing)
	}

	now := r.now().UTC()
	host := &models.Host{
		ID:          uuid.NewString(),
		Hostname:    hostname,
		IP:          ip,
		OS:          req.OS,
		Arch:        req.Arch,
		CPUCores:    req.CPUCores,
		MemoryBytes: req.MemoryBytes,
		DiskBytes:   req.DiskBytes,
		Components:  []models.Component{},
		SSH:         req.SSH,
		Metadata:    copyMetadata(req.Metadata),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.hosts[host.ID] = host
	r.byIP[ip] = host.ID

	return cloneHost(host), nil
}

// Get returns a copy of the host with the given id.
func (r *Registry) Get(id string) (*models.Host, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	host, ok := r.hosts[id]
	if !ok {
		return nil, ErrHostNotFound
	}
	return cloneHost(host), nil
}

// List returns all hosts ordered by hostname.
func (r *Registry) List() []models.Host {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hosts := make([]models.Host, 0, len(r.hosts))
	for _, host := range r.hosts {
		hosts = append(hosts, *cloneHost(host))
	}

	sort.Slice(hosts, func(i, j int) bool {
		if hosts[i].Hostname != hosts[j].Hostname {
			return hosts[i].Hostname < hosts[j].Hostname
		}
		return hosts[i].ID < hosts[j].ID
	})
	return hosts
}

// Delete removes a host and drops it from every group.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	host, ok := r.hosts[id]
	if !ok {
		return ErrHostNotFound
	}

	delete(r.hosts, id)
	delete(r.byIP, host.IP)

	for _, group := range r.groups {
		group.HostIDs = removeString(group.HostIDs, id)
	}
	return nil
}

// SetBrand records the detected SNMP brand of a host.
func (r *Registry) SetBrand(id string, brand *models.BrandMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	host, ok := r.hosts[id]
	if !ok {
		return ErrHostNotFound
	}
	host.Brand = brand
	host.UpdatedAt = r.now().UTC()
	return nil
}

// UpdateComponent sets the status of a monitoring component on a host,
// adding the component when it is not yet known.
func (r *Registry) UpdateComponent(id, component string, update models.ComponentUpdate) (*models.Host, error) {
	component = strings.TrimSpace(component)
	if component == "" {
		return nil, fmt.Errorf("%w: component name is required", ErrInvalidHost)
	}
	if !validComponentStatus(update.Status) {
		return nil, fmt.Errorf("%w: unknown component status %q", ErrInvalidHost, update.Status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	host, ok := r.hosts[id]
	if !ok {
		return nil, ErrHostNotFound
	}

	now := r.now().UTC()
	updated := false
	for i := range host.Components {
		if host.Components[i].Name == component {
			host.Components[i].Status = update.Status
			if update.Version != "" {
				host.Components[i].Version = update.Version
			}
			host.Components[i].UpdatedAt = now
			updated = true
			break
		}
	}
	if !updated {
		host.Components = append(host.Components, models.Component{
			Name:      component,
			Status:    update.Status,
			Version:   update.Version,
			UpdatedAt: now,
		})
	}
	host.UpdatedAt = now

	return cloneHost(host), nil
}

func validComponentStatus(status string) bool {
	switch status {
	case models.ComponentPending, models.ComponentInstalling, models.ComponentInstalled,
		models.ComponentFailed, models.ComponentRemoved:
		return true
	}
	return false
}

func cloneHost(host *models.Host) *models.Host {
	out := *host
	out.Components = append([]models.Component{}, host.Components...)
	out.Metadata = copyMetadata(host.Metadata)
	if host.SSH != nil {
		ssh := *host.SSH
		out.SSH = &ssh
	}
	if host.Brand != nil {
		brand := *host.Brand
		out.Brand = &brand
	}
	return &out
}

func copyMetadata(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, item := range list {
		if item != value {
			out = append(out, item)
		}
	}
	return out
}
