package cluster

import (
	"fmt"
	"strconv"
	"strings"
)

// maxHosts bounds how many names one hostlist may expand to.
const maxHosts = 1 << 16

var errHostlistTooLarge = fmt.Errorf("hostlist expands to more than %d hosts", maxHosts)

// ExpandHostlist expands a Slurm hostlist such as "node[01-03,07],login1"
// into individual host names. Zero padding of range bounds is kept.
func ExpandHostlist(list string) ([]string, error) {
	var hosts []string
	for _, item := range splitTopLevel(list) {
		if item == "" {
			continue
		}
		expanded, err := expandItem(item)
		if err != nil {
			return nil, err
		}
		if len(hosts)+len(expanded) > maxHosts {
			return nil, errHostlistTooLarge
		}
		hosts = append(hosts, expanded...)
	}
	return hosts, nil
}

// splitTopLevel splits on commas outside brackets.
func splitTopLevel(list string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range list {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(list[start:]))
}

func expandItem(item string) ([]string, error) {
	open := strings.IndexByte(item, '[')
	if open < 0 {
		return []string{item}, nil
	}
	end := strings.IndexByte(item[open:], ']')
	if end < 0 {
		return nil, fmt.Errorf("hostlist %q: unbalanced bracket", item)
	}
	end += open
	prefix := item[:open]
	suffixes, err := expandItem(item[end+1:])
	if err != nil {
		return nil, err
	}
	var out []string
	for _, rng := range strings.Split(item[open+1:end], ",") {
		values, err := expandRange(rng)
		if err != nil {
			return nil, fmt.Errorf("hostlist %q: %w", item, err)
		}
		if len(out)+len(values)*len(suffixes) > maxHosts {
			return nil, fmt.Errorf("hostlist %q: %w", item, errHostlistTooLarge)
		}
		for _, v := range values {
			for _, s := range suffixes {
				out = append(out, prefix+v+s)
			}
		}
	}
	return out, nil
}

func expandRange(rng string) ([]string, error) {
	lo, hi, isRange := strings.Cut(strings.TrimSpace(rng), "-")
	if !isRange {
		hi = lo
	}
	from, err := strconv.Atoi(lo)
	if err != nil {
		return nil, fmt.Errorf("bad range %q", rng)
	}
	to, err := strconv.Atoi(hi)
	if err != nil || to < from {
		return nil, fmt.Errorf("bad range %q", rng)
	}
	if to-from >= maxHosts {
		return nil, errHostlistTooLarge
	}
	width := len(lo)
	out := make([]string, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, fmt.Sprintf("%0*d", width, n))
	}
	return out, nil
}

// HostlistContains reports whether host is one of the hosts in list.
func HostlistContains(list, host string) bool {
	hosts, err := ExpandHostlist(list)
	if err != nil {
		return false
	}
	for _, h := range hosts {
		if h == host {
			return true
		}
	}
	return false
}
