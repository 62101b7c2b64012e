package networks

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// NodeURL picks the node to talk to on network: the value of the network's
// node variable when set, otherwise the first default node by name.
func NodeURL(network Network) (string, error) {
	if v := network.GetNodeVariableName(); v != "" {
		if url := strings.TrimSpace(os.Getenv(v)); url != "" {
			return url, nil
		}
	}
	nodes := network.GetDefaultNodes()
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("network %s has no node, set %s", network.GetName(), network.GetNodeVariableName())
	}
	sort.Strings(names)
	return nodes[names[0]], nil
}
