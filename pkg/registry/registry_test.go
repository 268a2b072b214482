package registry

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"mibhub/pkg/models"

	"github.com/stretchr/testify/suite"
)

// RegistryTestSuite tests host and group bookkeeping.
type RegistryTestSuite struct {
	suite.Suite
	registry *Registry
}

func (s *RegistryTestSuite) SetupTest() {
	s.registry = New()
}

func (s *RegistryTestSuite) discover(ip string) *models.Host {
	host, err := s.registry.Discover(&models.DiscoverRequest{IP: ip, Hostname: "host-" + ip})
	s.Require().NoError(err)
	return host
}

func (s *RegistryTestSuite) TestDiscover() {
	host, err := s.registry.Discover(&models.DiscoverRequest{
		IP:       "10.0.0.5",
		OS:       "linux",
		Arch:     "amd64",
		CPUCores: 8,
		SSH:      &models.SSHInfo{User: "ops", Port: 22},
		Metadata: map[string]string{"rack": "a1"},
	})
	s.Require().NoError(err)
	s.NotEmpty(host.ID)
	s.Equal("10.0.0.5", host.Hostname, "hostname defaults to the address")
	s.Equal("a1", host.Metadata["rack"])
	s.Empty(host.Components)

	fetched, err := s.registry.Get(host.ID)
	s.Require().NoError(err)
	s.Equal(host.ID, fetched.ID)
}

func (s *RegistryTestSuite) TestDiscoverInvalidIP() {
	_, err := s.registry.Discover(&models.DiscoverRequest{IP: "not-an-ip"})
	s.ErrorIs(err, ErrInvalidHost)
}

func (s *RegistryTestSuite) TestDiscoverDuplicateIP() {
	s.discover("10.0.0.1")
	_, err := s.registry.Discover(&models.DiscoverRequest{IP: "10.0.0.1"})
	s.ErrorIs(err, ErrHostExists)
}

func (s *RegistryTestSuite) TestDiscoverDuplicateSpellings() {
	host := s.discover("10.0.0.1")
	_, err := s.registry.Discover(&models.DiscoverRequest{IP: "::ffff:10.0.0.1"})
	s.ErrorIs(err, ErrHostExists)

	v6 := s.discover("2001:DB8::1")
	s.Equal("2001:db8::1", v6.IP)
	for _, spelling := range []string{"2001:db8::1", "2001:0db8::1", " 2001:0DB8:0:0:0:0:0:1 "} {
		_, err := s.registry.Discover(&models.DiscoverRequest{IP: spelling})
		s.ErrorIs(err, ErrHostExists, spelling)
	}
	s.Len(s.registry.List(), 2)

	s.Require().NoError(s.registry.Delete(host.ID))
	s.discover("::ffff:10.0.0.1")
}

func (s *RegistryTestSuite) TestGetUnknown() {
	_, err := s.registry.Get("missing")
	s.ErrorIs(err, ErrHostNotFound)
}

func (s *RegistryTestSuite) TestGetReturnsCopy() {
	host := s.discover("10.0.0.2")
	fetched, err := s.registry.Get(host.ID)
	s.Require().NoError(err)
	fetched.Hostname = "mutated"

	again, err := s.registry.Get(host.ID)
	s.Require().NoError(err)
	s.Equal("host-10.0.0.2", again.Hostname)
}

func (s *RegistryTestSuite) TestListSorted() {
	s.discover("10.0.0.9")
	s.discover("10.0.0.1")

	hosts := s.registry.List()
	s.Require().Len(hosts, 2)
	s.Equal("host-10.0.0.1", hosts[0].Hostname)
}

func (s *RegistryTestSuite) TestDeleteRemovesGroupMembership() {
	host := s.discover("10.0.0.3")
	_, err := s.registry.CreateGroup(models.HostGroup{ID: "core", HostIDs: []string{host.ID}})
	s.Require().NoError(err)

	s.Require().NoError(s.registry.Delete(host.ID))
	s.ErrorIs(s.registry.Delete(host.ID), ErrHostNotFound)

	group, err := s.registry.GetGroup("core")
	s.Require().NoError(err)
	s.Empty(group.HostIDs)

	// The address can be registered again.
	s.discover("10.0.0.3")
}

func (s *RegistryTestSuite) TestUpdateComponent() {
	host := s.discover("10.0.0.4")

	updated, err := s.registry.UpdateComponent(host.ID, "node_exporter", models.ComponentUpdate{Status: models.ComponentInstalling})
	s.Require().NoError(err)
	s.Require().Len(updated.Components, 1)
	s.Equal(models.ComponentInstalling, updated.Components[0].Status)

	updated, err = s.registry.UpdateComponent(host.ID, "node_exporter", models.ComponentUpdate{Status: models.ComponentInstalled, Version: "1.8.2"})
	s.Require().NoError(err)
	s.Require().Len(updated.Components, 1)
	s.Equal(models.ComponentInstalled, updated.Components[0].Status)
	s.Equal("1.8.2", updated.Components[0].Version)
}

func (s *RegistryTestSuite) TestUpdateComponentValidation() {
	host := s.discover("10.0.0.6")

	_, err := s.registry.UpdateComponent(host.ID, "", models.ComponentUpdate{Status: models.ComponentInstalled})
	s.ErrorIs(err, ErrInvalidHost)

	_, err = s.registry.UpdateComponent(host.ID, "snmp_exporter", models.ComponentUpdate{Status: "exploded"})
	s.ErrorIs(err, ErrInvalidHost)

	_, err = s.registry.UpdateComponent("missing", "snmp_exporter", models.ComponentUpdate{Status: models.ComponentInstalled})
	s.ErrorIs(err, ErrHostNotFound)
}

func (s *RegistryTestSuite) TestSetBrand() {
	host := s.discover("10.0.0.7")
	s.Require().NoError(s.registry.SetBrand(host.ID, &models.BrandMatch{Brand: "cisco"}))

	fetched, err := s.registry.Get(host.ID)
	s.Require().NoError(err)
	s.Equal("cisco", fetched.Brand.Brand)
	s.ErrorIs(s.registry.SetBrand("missing", nil), ErrHostNotFound)
}

func (s *RegistryTestSuite) TestGroups() {
	host := s.discover("10.0.1.1")

	group, err := s.registry.CreateGroup(models.HostGroup{
		ID:                "edge",
		HostIDs:           []string{host.ID, host.ID},
		DefaultComponents: []string{"node_exporter"},
	})
	s.Require().NoError(err)
	s.Equal("edge", group.Name)
	s.Len(group.HostIDs, 1, "duplicate members collapse")

	_, err = s.registry.CreateGroup(models.HostGroup{ID: "edge"})
	s.ErrorIs(err, ErrGroupExists)

	_, err = s.registry.CreateGroup(models.HostGroup{ID: "Bad Id"})
	s.ErrorIs(err, ErrInvalidGroup)

	_, err = s.registry.CreateGroup(models.HostGroup{ID: "ghosts", HostIDs: []string{"nope"}})
	s.ErrorIs(err, ErrInvalidGroup)

	s.Len(s.registry.ListGroups(), 1)
	s.Require().NoError(s.registry.DeleteGroup("edge"))
	s.ErrorIs(s.registry.DeleteGroup("edge"), ErrGroupNotFound)
	_, err = s.registry.GetGroup("edge")
	s.ErrorIs(err, ErrGroupNotFound)
}

func (s *RegistryTestSuite) TestLoadGroups() {
	host := s.discover("10.0.2.1")
	path := filepath.Join(s.T().TempDir(), "groups.yml")
	content := `groups:
  - id: switches
    name: Core switches
    host_ids: ["` + host.ID + `", "unknown"]
    default_components: [snmp_exporter]
    template:
      snmp_exporter:
        module: if_mib
  - id: servers
`
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	loaded, err := s.registry.LoadGroups(path)
	s.Require().NoError(err)
	s.Equal(2, loaded)

	group, err := s.registry.GetGroup("switches")
	s.Require().NoError(err)
	s.Equal([]string{host.ID}, group.HostIDs)
	s.Equal("if_mib", group.Template["snmp_exporter"]["module"])
}

func (s *RegistryTestSuite) TestLoadGroupsMissingFile() {
	_, err := s.registry.LoadGroups(filepath.Join(s.T().TempDir(), "nope.yml"))
	s.Error(err)
}

func (s *RegistryTestSuite) TestConcurrentUpdates() {
	host := s.discover("10.0.3.1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.registry.UpdateComponent(host.ID, "node_exporter", models.ComponentUpdate{Status: models.ComponentInstalled})
			s.NoError(err)
			s.registry.List()
		}()
	}
	wg.Wait()

	fetched, err := s.registry.Get(host.ID)
	s.Require().NoError(err)
	s.Len(fetched.Components, 1)
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}
