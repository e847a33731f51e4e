// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"os"
	"time"
)

// StaleAfter is the dataset age after which readiness reports degraded.
const StaleAfter = 24 * time.Hour

// DatasetChecker reports whether a dataset is published. state returns the
// publish time of the current dataset (zero when none) and the error of the
// most recent load ("" when it succeeded).
type DatasetChecker struct {
	state func() (time.Time, string)
	now   func() time.Time
}

// NewDatasetChecker creates the readiness gate for the published dataset.
func NewDatasetChecker(state func() (time.Time, string)) *DatasetChecker {
	return &DatasetChecker{state: state, now: time.Now}
}

func (c *DatasetChecker) Name() string {
	return "dataset"
}

func (c *DatasetChecker) Check(ctx context.Context) CheckResult {
	loadedAt, lastError := c.state()

	if loadedAt.IsZero() {
		res := CheckResult{
			Status:  StatusUnhealthy,
			Message: "no dataset published yet",
		}
		if lastError != "" {
			res.Error = lastError
		}
		return res
	}

	if lastError != "" {
		return CheckResult{
			Status:  StatusDegraded,
			Error:   lastError,
			Message: "last load failed, serving previous dataset",
		}
	}

	if c.now().Sub(loadedAt) > StaleAfter {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "dataset older than 24h",
		}
	}

	return CheckResult{
		Status:  StatusHealthy,
		Message: "dataset published",
	}
}

// FuncChecker adapts a probe function, e.g. a Redis ping or a database
// integrity check. A failing probe reports failStatus.
type FuncChecker struct {
	name       string
	probe      func(ctx context.Context) error
	failStatus Status
}

// NewFuncChecker creates a checker around probe.
func NewFuncChecker(name string, failStatus Status, probe func(ctx context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, probe: probe, failStatus: failStatus}
}

func (c *FuncChecker) Name() string {
	return c.name
}

func (c *FuncChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.probe(ctx); err != nil {
		return CheckResult{
			Status: c.failStatus,
			Error:  err.Error(),
		}
	}
	return CheckResult{Status: StatusHealthy}
}

// DirChecker checks that the local bundle folder is still there.
type DirChecker struct {
	name string
	path string
}

// NewDirChecker creates a checker for directory existence.
func NewDirChecker(name, path string) *DirChecker {
	return &DirChecker{
		name: name,
		path: path,
	}
}

func (c *DirChecker) Name() string {
	return c.name
}

func (c *DirChecker) Check(ctx context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "not configured (optional)",
		}
	}

	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusDegraded,
				Error:   "directory not found",
				Message: c.path,
			}
		}
		return CheckResult{
			Status: StatusDegraded,
			Error:  err.Error(),
		}
	}

	if !info.IsDir() {
		return CheckResult{
			Status: StatusDegraded,
			Error:  "expected directory, got file",
		}
	}

	return CheckResult{
		Status:  StatusHealthy,
		Message: "directory exists",
	}
}
