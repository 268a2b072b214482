package registry

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"mibhub/pkg/models"

	"gopkg.in/yaml.v3"
)

// groupIDPattern matches lowercase slugs such as "core-switches".
var groupIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// CreateGroup adds a host group. Every member must already be registered.
func (r *Registry) CreateGroup(group models.HostGroup) (*models.HostGroup, error) {
	if !groupIDPattern.MatchString(group.ID) {
		return nil, fmt.Errorf("%w: id %q must be a lowercase slug", ErrInvalidGroup, group.ID)
	}
	if group.Name == "" {
		group.Name = group.ID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[group.ID]; exists {
		return nil, ErrGroupExists
	}

	seen := make(map[string]bool, len(group.HostIDs))
	members := make([]string, 0, len(group.HostIDs))
	for _, hostID := range group.HostIDs {
		if _, ok := r.hosts[hostID]; !ok {
			return nil, fmt.Errorf("%w: unknown host %s", ErrInvalidGroup, hostID)
		}
		if !seen[hostID] {
			seen[hostID] = true
			members = append(members, hostID)
		}
	}

	stored := group
	stored.HostIDs = members
	stored.DefaultComponents = append([]string{}, group.DefaultComponents...)
	stored.CreatedAt = r.now().UTC()
	r.groups[stored.ID] = &stored

	out := stored
	return &out, nil
}

// GetGroup returns a copy of the group with the given id.
func (r *Registry) GetGroup(id string) (*models.HostGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.groups[id]
	if !ok {
		return nil, ErrGroupNotFound
	}
	out := *group
	out.HostIDs = append([]string{}, group.HostIDs...)
	return &out, nil
}

// ListGroups returns all groups ordered by id.
func (r *Registry) ListGroups() []models.HostGroup {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]models.HostGroup, 0, len(r.groups))
	for _, group := range r.groups {
		out := *group
		out.HostIDs = append([]string{}, group.HostIDs...)
		groups = append(groups, out)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

// DeleteGroup removes a group. Member hosts are left untouched.
func (r *Registry) DeleteGroup(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[id]; !ok {
		return ErrGroupNotFound
	}
	delete(r.groups, id)
	return nil
}

// groupsFile is the layout of the YAML seed file.
type groupsFile struct {
	Groups []models.HostGroup `yaml:"groups"`
}

// LoadGroups seeds groups from a YAML file. Member ids are not checked since
// hosts are only known after discovery; unknown members are dropped.
func (r *Registry) LoadGroups(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read groups file: %w", err)
	}

	var file groupsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse groups file: %w", err)
	}

	loaded := 0
	for _, group := range file.Groups {
		known := make([]string, 0, len(group.HostIDs))
		r.mu.RLock()
		for _, hostID := range group.HostIDs {
			if _, ok := r.hosts[hostID]; ok {
				known = append(known, hostID)
			}
		}
		r.mu.RUnlock()
		group.HostIDs = known

		if _, err := r.CreateGroup(group); err != nil {
			return loaded, fmt.Errorf("group %q: %w", group.ID, err)
		}
		loaded++
	}
	return loaded, nil
}
