package networks

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/ss-deshmukh/Nomenclature/common"
)

// Insert more Network implementation here to support
// more chains
var supportedNetworks = []Network{
	Westend,
	LocalContracts,
}

var (
	globalSupportedNetworks = newSupportedNetworks(DefaultCustomNetworksDir())
	ErrNetworkNotFound      = fmt.Errorf("network not found")
)

type networks struct {
	mu       sync.RWMutex
	networks map[string]Network
	dir      string
}

func DefaultCustomNetworksDir() string {
	usr, err := user.Current()
	if err != nil {
		return ""
	}
	return filepath.Join(usr.HomeDir, ".nomenclature", "networks")
}

func (n *networks) getSupportedNetworkNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res := []string{}
	for name := range n.networks {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (n *networks) getNetwork(name string) (Network, error) {
	n.mu.RLock()
	res, found := n.networks[name]
	n.mu.RUnlock()
	if found {
		return res, nil
	}
	if suggestions := n.suggest(name); len(suggestions) > 0 {
		return nil, fmt.Errorf("network name '%s': %w, did you mean %q?", name, ErrNetworkNotFound, suggestions[0])
	}
	return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
}

func (n *networks) suggest(name string) []string {
	names := n.getSupportedNetworkNames()
	matches := fuzzy.Find(name, names)
	res := []string{}
	for i := 0; i < len(matches) && i < 3; i++ {
		res = append(res, matches[i].Str)
	}
	return res
}

func (n *networks) register(network Network) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, name := range append([]string{network.GetName()}, network.GetAlternativeNames()...) {
		if existing, found := n.networks[name]; found && existing.GetName() != network.GetName() {
			return fmt.Errorf("network with name or alternative name of '%s' already exists", name)
		}
	}
	n.networks[network.GetName()] = network
	for _, an := range network.GetAlternativeNames() {
		n.networks[an] = network
	}
	return nil
}

func newSupportedNetworks(dir string) *networks {
	result := &networks{networks: map[string]Network{}, dir: dir}
	for _, n := range supportedNetworks {
		if err := result.register(n); err != nil {
			panic(err)
		}
	}

	log := common.LoggerFor("networks")
	customNetworks, err := LoadCustomNetworks(dir)
	if err != nil {
		log.WithError(err).Warn("failed to load custom networks, continuing with built-in networks")
		return result
	}
	for _, n := range customNetworks {
		if _, found := result.networks[n.GetName()]; found {
			log.Infof("network with name '%s' already exists, using custom network", n.GetName())
		}
		if err := result.register(n); err != nil {
			log.WithError(err).Warnf("skipping custom network %s", n.GetName())
		}
	}
	return result
}

// LoadCustomNetworks reads every *.json network description in dir. A
// missing dir is not an error.
func LoadCustomNetworks(dir string) ([]Network, error) {
	if dir == "" {
		return nil, nil
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}

	networks := []Network{}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}
		network, err := NewNetworkFromJSON(content)
		if err != nil {
			common.LoggerFor("networks").WithError(err).Warnf("ignoring custom network file %s", file)
			continue
		}
		networks = append(networks, network)
	}
	return networks, nil
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericSubstrateNetworkConfig{}
	if err := json.Unmarshal(content, &networkConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if networkConfig.Name == "" {
		return nil, fmt.Errorf("network config has no name")
	}
	if len(networkConfig.DefaultNodes) == 0 && networkConfig.NodeVariableName == "" {
		return nil, fmt.Errorf("network %s has neither default nodes nor a node variable", networkConfig.Name)
	}
	return NewGenericSubstrateNetwork(networkConfig), nil
}

// GetSupportedNetworks returns each network once, sorted by name.
func GetSupportedNetworks() []Network {
	globalSupportedNetworks.mu.RLock()
	defer globalSupportedNetworks.mu.RUnlock()
	seen := map[string]bool{}
	res := []Network{}
	for _, n := range globalSupportedNetworks.networks {
		if seen[n.GetName()] {
			continue
		}
		seen[n.GetName()] = true
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].GetName() < res[j].GetName() })
	return res
}

func GetNetwork(name string) (Network, error) {
	return globalSupportedNetworks.getNetwork(name)
}

func GetSupportedNetworkNames() []string {
	return globalSupportedNetworks.getSupportedNetworkNames()
}

// AddNetwork registers network and stores it in the custom networks
// directory so later invocations see it too.
func AddNetwork(network Network) error {
	if err := globalSupportedNetworks.register(network); err != nil {
		return err
	}
	dir := globalSupportedNetworks.dir
	if dir == "" {
		return fmt.Errorf("no custom networks directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	content, err := network.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}
	err = os.WriteFile(filepath.Join(dir, fmt.Sprintf("%s.json", network.GetName())), content, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write the new network to file: %w", err)
	}
	return nil
}
