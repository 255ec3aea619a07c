package domain

// MergeTasks reconciles a local record set with a source record set by id.
// A record present on both sides keeps whichever copy has the greater
// Modified clock; on a tie the source copy wins. Records only present in
// local are appended after the source order, in their local order.
func MergeTasks(local, source []Task) []Task {
	index := make(map[string]int, len(local))
	for i, t := range local {
		index[t.ID] = i
	}
	used := make([]bool, len(local))

	out := make([]Task, 0, len(local)+len(source))
	for _, src := range source {
		i, ok := index[src.ID]
		if !ok || used[i] {
			out = append(out, src)
			continue
		}
		used[i] = true
		if local[i].Modified > src.Modified {
			out = append(out, local[i])
		} else {
			out = append(out, src)
		}
	}
	for i, t := range local {
		if !used[i] {
			out = append(out, t)
		}
	}
	return out
}
