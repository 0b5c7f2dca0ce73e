package gate

import (
	"fmt"
	"strings"
)

// JobResult is the outcome of one upstream pipeline job.
type JobResult string

const (
	JobSuccess   JobResult = "success"
	JobFailure   JobResult = "failure"
	JobCancelled JobResult = "cancelled"
	JobSkipped   JobResult = "skipped"
)

// Job pairs a job name with its result.
type Job struct {
	Name   string    `json:"name"`
	Result JobResult `json:"result"`
}

// ParseJobResult normalises a job result string.
func ParseJobResult(raw string) (JobResult, error) {
	switch r := JobResult(strings.ToLower(strings.TrimSpace(raw))); r {
	case JobSuccess, JobFailure, JobCancelled, JobSkipped:
		return r, nil
	default:
		return "", fmt.Errorf("unknown job result %q (must be success, failure, cancelled or skipped)", raw)
	}
}

// ParseJob parses a "name=result" pair.
func ParseJob(pair string) (Job, error) {
	name, raw, ok := strings.Cut(pair, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Job{}, fmt.Errorf("invalid job %q (expected name=result)", pair)
	}
	result, err := ParseJobResult(raw)
	if err != nil {
		return Job{}, fmt.Errorf("job %s: %w", name, err)
	}
	return Job{Name: name, Result: result}, nil
}

// ParseJobs parses every pair, stopping at the first invalid one.
func ParseJobs(pairs []string) ([]Job, error) {
	jobs := make([]Job, 0, len(pairs))
	for _, p := range pairs {
		job, err := ParseJob(p)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
