// internal/grouping/chains.go

package grouping

import (
    "sort"

    "github.com/hyking/hyking-backend/internal/matching"
)

// FindMatchChains turns active matches into groups: it walks the undirected
// match graph and returns vertex-disjoint simple paths holding between
// rules.MinSize and rules.MaxSize profiles. Walks start from the least
// connected profiles (ties by id) and always continue to the smallest unused
// neighbour, so the result is deterministic.
func FindMatchChains(pairs []matching.Pair, rules Rules) [][]string {
    adjacency := make(map[string][]string)
    for _, p := range pairs {
        if p.User1ID == p.User2ID {
            continue
        }
        adjacency[p.User1ID] = appendUnique(adjacency[p.User1ID], p.User2ID)
        adjacency[p.User2ID] = appendUnique(adjacency[p.User2ID], p.User1ID)
    }

    nodes := make([]string, 0, len(adjacency))
    for id, neighbours := range adjacency {
        sort.Strings(neighbours)
        nodes = append(nodes, id)
    }
    sort.Slice(nodes, func(i, j int) bool {
        di, dj := len(adjacency[nodes[i]]), len(adjacency[nodes[j]])
        if di != dj {
            return di < dj
        }
        return nodes[i] < nodes[j]
    })

    used := make(map[string]bool, len(nodes))
    var chains [][]string
    for _, start := range nodes {
        if used[start] {
            continue
        }

        path := []string{start}
        inPath := map[string]bool{start: true}
        for len(path) < rules.MaxSize {
            next := ""
            for _, n := range adjacency[path[len(path)-1]] {
                if !used[n] && !inPath[n] {
                    next = n
                    break
                }
            }
            if next == "" {
                break
            }
            path = append(path, next)
            inPath[next] = true
        }

        if len(path) >= rules.MinSize {
            for _, id := range path {
                used[id] = true
            }
            chains = append(chains, path)
        }
    }
    return chains
}

func appendUnique(list []string, id string) []string {
    for _, existing := range list {
        if existing == id {
            return list
        }
    }
    return append(list, id)
}
