package resizer

import "fmt"

// makeUniqueNetName mints "net{n}" from the monotone net-name counter,
// retrying on collision against NETLIST (spec.md §4.2). Output is guaranteed
// unique only at the moment of return.
func (r *Resizer) makeUniqueNetName() string {
	for {
		r.uniqueNetCounter++
		name := fmt.Sprintf("net%d", r.uniqueNetCounter)
		if _, exists := r.NL.FindNet(name); !exists {
			return name
		}
	}
}

// makeUniqueInstName mints "{base}{n}" or "{base}_{n}" from the monotone
// instance-name counter, with the same collision-retry contract.
func (r *Resizer) makeUniqueInstName(base string, underscore bool) string {
	for {
		r.uniqueInstCounter++
		var name string
		if underscore {
			name = fmt.Sprintf("%s_%d", base, r.uniqueInstCounter)
		} else {
			name = fmt.Sprintf("%s%d", base, r.uniqueInstCounter)
		}
		if _, exists := r.NL.FindInstance(name); !exists {
			return name
		}
	}
}
