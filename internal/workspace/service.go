package workspace

import (
	"sort"
	"strings"

	"github.com/simonhull/create-v1-app/internal/apperr"
)

// Service is an optional bundle that becomes packages/<name>.
type Service string

const (
	Analytics Service = "analytics"
	Email     Service = "email"
	Jobs      Service = "jobs"
	KV        Service = "kv"
	Supabase  Service = "supabase"
)

var descriptions = map[Service]string{
	Analytics: "Product analytics with OpenPanel and Dub",
	Email:     "Transactional email with Resend and React Email",
	Jobs:      "Background jobs with Trigger.dev",
	KV:        "Key-value store and rate limiting with Upstash Redis",
	Supabase:  "Database, auth and storage with Supabase",
}

// Services lists every known service in display order.
var Services = []Service{Analytics, Email, Jobs, KV, Supabase}

// Description returns the one-line help for s.
func (s Service) Description() string { return descriptions[s] }

// TemplateDir is the service's template subtree.
func (s Service) TemplateDir() string { return "services/" + string(s) }

// PackageDir is where the service is written, relative to the project root.
func (s Service) PackageDir() string { return "packages/" + string(s) }

// ImportPath is the package name generated code imports the service by.
func (s Service) ImportPath() string { return "@v1/" + string(s) }

// ParseService returns the known service named name.
func ParseService(name string) (Service, error) {
	s := Service(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := descriptions[s]; !ok {
		known := make([]string, len(Services))
		for i, svc := range Services {
			known[i] = string(svc)
		}
		return "", apperr.Configf("unknown service %q (available: %s)", name, strings.Join(known, ", "))
	}
	return s, nil
}

// ParseServices validates names and drops duplicates, keeping first
// occurrence order. Comma-separated entries are split.
func ParseServices(names []string) ([]Service, error) {
	seen := make(map[Service]bool, len(names))
	var out []Service
	for _, raw := range names {
		for _, name := range strings.Split(raw, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			s, err := ParseService(name)
			if err != nil {
				return nil, err
			}
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out, nil
}

// Names returns the sorted string form of services.
func Names(services []Service) []string {
	out := make([]string, len(services))
	for i, s := range services {
		out[i] = string(s)
	}
	sort.Strings(out)
	return out
}
