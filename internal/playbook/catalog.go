package playbook

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Playbook is one incident-response runbook. The catalog is fixed after load.
type Playbook struct {
	ID                 int      `yaml:"id" json:"id"`
	Title              string   `yaml:"title" json:"title"`
	TriggerDescription string   `yaml:"trigger" json:"trigger"`
	Steps              []string `yaml:"steps" json:"steps"`
	RemediationScript  string   `yaml:"remediation_script" json:"remediation_script"`
}

// Catalog is an ordered, immutable set of playbooks.
type Catalog struct {
	playbooks []Playbook
	byID      map[int]int
}

var errEmptyCatalog = errors.New("playbook catalog is empty")

// NewCatalog validates playbooks and builds a catalog. IDs must be positive
// and unique; zero is reserved for "no active incident".
func NewCatalog(playbooks []Playbook) (*Catalog, error) {
	if len(playbooks) == 0 {
		return nil, errEmptyCatalog
	}

	c := &Catalog{
		playbooks: make([]Playbook, len(playbooks)),
		byID:      make(map[int]int, len(playbooks)),
	}
	copy(c.playbooks, playbooks)
	sort.SliceStable(c.playbooks, func(i, j int) bool { return c.playbooks[i].ID < c.playbooks[j].ID })

	for i, p := range c.playbooks {
		if p.ID <= 0 {
			return nil, fmt.Errorf("playbook %q: id must be positive, got %d", p.Title, p.ID)
		}
		if strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("playbook %d: title is required", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate playbook id %d", p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// Len returns the number of playbooks.
func (c *Catalog) Len() int {
	return len(c.playbooks)
}

// All returns a copy of the playbooks in id order.
func (c *Catalog) All() []Playbook {
	out := make([]Playbook, len(c.playbooks))
	copy(out, c.playbooks)
	return out
}

// At returns the playbook at index i in id order.
func (c *Catalog) At(i int) Playbook {
	return c.playbooks[i]
}

// Get returns the playbook with the given id.
func (c *Catalog) Get(id int) (Playbook, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Playbook{}, false
	}
	return c.playbooks[i], true
}

// Contains reports whether id is in the catalog.
func (c *Catalog) Contains(id int) bool {
	_, ok := c.byID[id]
	return ok
}

type catalogFile struct {
	Playbooks []Playbook `yaml:"playbooks"`
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playbook catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse playbook catalog: %w", err)
	}
	return NewCatalog(f.Playbooks)
}

// DefaultCatalog returns the built-in incident playbooks.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultPlaybooks)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultPlaybooks = []Playbook{
	{
		ID:                 1,
		Title:              "Leaked Secret in Repository",
		TriggerDescription: "Gitleaks detects a credential committed to the default branch",
		Steps: []string{
			"Revoke the exposed credential at the provider",
			"Issue a replacement and update the secret store",
			"Purge the secret from git history",
			"Audit provider logs for use of the leaked value",
		},
		RemediationScript: "rotate-secrets.sh",
	},
	{
		ID:                 2,
		Title:              "Critical Dependency Vulnerability",
		TriggerDescription: "Trivy or npm audit reports a CRITICAL CVE in a shipped dependency",
		Steps: []string{
			"Identify affected services from the SBOM",
			"Bump the dependency to the fixed version",
			"Rebuild and rescan container images",
			"Redeploy and confirm the CVE is cleared",
		},
		RemediationScript: "patch-dependencies.sh",
	},
	{
		ID:                 3,
		Title:              "Public S3 Bucket Exposure",
		TriggerDescription: "Compliance scan flags a bucket readable by anyone",
		Steps: []string{
			"Enable S3 Block Public Access on the bucket",
			"Review the bucket policy and ACLs",
			"Check access logs for anonymous reads",
			"Notify data owners if sensitive objects were exposed",
		},
		RemediationScript: "block-public-s3.sh",
	},
	{
		ID:                 4,
		Title:              "Compromised IAM Access Key",
		TriggerDescription: "CloudTrail shows API calls from an unrecognised location",
		Steps: []string{
			"Deactivate the access key",
			"Attach a deny-all policy to the affected principal",
			"Review CloudTrail for actions taken with the key",
			"Rotate credentials and re-enable least-privilege access",
		},
		RemediationScript: "revoke-iam-keys.sh",
	},
	{
		ID:                 5,
		Title:              "Container Runtime Anomaly",
		TriggerDescription: "An unexpected shell process spawns in a production container",
		Steps: []string{
			"Cordon the node and isolate the pod network",
			"Capture a forensic snapshot of the container",
			"Terminate the workload and redeploy from a clean image",
			"Tighten the pod security context",
		},
		RemediationScript: "isolate-container.sh",
	},
}
