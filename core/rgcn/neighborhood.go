package rgcn

// neighborhoodMask computes a boolean edge mask covering the k-hop
// neighborhood of the query nodes, for on-demand (batch-restricted)
// propagation.
//
// A node-membership mask starts with exactly the query nodes. Each hop marks
// every source whose target is already marked (messages flow from marked
// targets backward to the sources that feed them), and with undirected
// passing also the reverse. The per-hop gather reads a snapshot of the mask,
// so edges cannot cascade within a single hop. The result over-approximates
// the exact k-hop neighborhood; that is intentional, it must never
// under-select an edge the batch needs.
func neighborhoodMask(queryNodes, sources, targets []int, hops, numNodes int, undirected bool) []bool {
	nodeMask := make([]bool, numNodes)
	for _, n := range queryNodes {
		nodeMask[n] = true
	}

	snapshot := make([]bool, len(sources))
	for h := 0; h < hops; h++ {
		for i, t := range targets {
			snapshot[i] = nodeMask[t]
		}
		for i, s := range sources {
			if snapshot[i] {
				nodeMask[s] = true
			}
		}

		if undirected {
			for i, s := range sources {
				snapshot[i] = nodeMask[s]
			}
			for i, t := range targets {
				if snapshot[i] {
					nodeMask[t] = true
				}
			}
		}
	}

	edgeMask := make([]bool, len(sources))
	for i := range edgeMask {
		edgeMask[i] = nodeMask[targets[i]] || (undirected && nodeMask[sources[i]])
	}
	return edgeMask
}
