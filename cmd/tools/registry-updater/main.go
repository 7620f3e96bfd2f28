// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"docugen-workers/pkg/registry"
)

type addFlags struct {
	id          string
	displayName string
	description string
	category    string
	taskType    string
	version     string
	status      string
	timeout     string
}

func main() {
	if err := newRootCommand(time.Now).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(now func() time.Time) *cobra.Command {
	var path string
	root := &cobra.Command{
		Use:          "registry-updater",
		Short:        "Maintain the activity registry consumed by the workers",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&path, "path", "configs/activity-registry.json", "Path to registry file")

	var af addFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new activity to the registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := addActivity(path, af, now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", af.id)
			return nil
		},
	}
	f := addCmd.Flags()
	f.StringVar(&af.id, "id", "", "Activity ID (e.g. docugen.document.generate)")
	f.StringVar(&af.displayName, "displayName", "", "Display name")
	f.StringVar(&af.description, "description", "", "Description")
	f.StringVar(&af.category, "category", "docugen", "Category")
	f.StringVar(&af.taskType, "taskType", "", "Zeebe task type (e.g. docugen-generate-document)")
	f.StringVar(&af.version, "version", "1.0.0", "Version")
	f.StringVar(&af.status, "status", "planned", "Implementation status (planned, in-progress, completed, verified)")
	f.StringVar(&af.timeout, "timeout", "10s", "Job timeout")
	for _, name := range []string{"id", "displayName", "description", "taskType"} {
		_ = addCmd.MarkFlagRequired(name)
	}

	var id, field, value string
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update an existing activity's field",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := updateActivity(path, id, field, value, now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&id, "id", "", "Activity ID to update")
	updateCmd.Flags().StringVar(&field, "field", "", "Field to update (status, version, displayName, description, category, taskType, timeout, retries)")
	updateCmd.Flags().StringVar(&value, "value", "", "New value for the field")
	for _, name := range []string{"id", "field", "value"} {
		_ = updateCmd.MarkFlagRequired(name)
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			return printActivities(cmd.OutOrStdout(), reg)
		},
	}

	root.AddCommand(addCmd, updateCmd, validateCmd, listCmd)
	return root
}

func addActivity(path string, af addFlags, now time.Time) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	if _, exists := reg.ByID(af.id); exists {
		return fmt.Errorf("activity with ID %s already exists", af.id)
	}

	reg.Activities = append(reg.Activities, registry.Activity{
		ID:                   af.id,
		DisplayName:          af.displayName,
		Description:          af.description,
		Category:             af.category,
		Version:              af.version,
		TaskType:             af.taskType,
		ImplementationStatus: af.status,
		InputSchema:          map[string]interface{}{"type": "object"},
		OutputSchema:         map[string]interface{}{"type": "object"},
		ErrorCodes:           []string{},
		Timeout:              af.timeout,
		Workflows:            []string{},
		Tags:                 []string{},
	})
	if err := reg.Validate(); err != nil {
		return err
	}
	return registry.Save(reg, path, now)
}

func updateActivity(path, id, field, value string, now time.Time) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	a, ok := reg.ByID(id)
	if !ok {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
	case "taskType":
		a.TaskType = value
	case "timeout":
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	return registry.Save(reg, path, now)
}

func printActivities(w io.Writer, reg *registry.ActivityRegistry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTASK TYPE\tSTATUS\tVERSION\tTIMEOUT")
	for _, a := range reg.Activities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.TaskType, a.ImplementationStatus, a.Version, a.Timeout)
	}
	return tw.Flush()
}
