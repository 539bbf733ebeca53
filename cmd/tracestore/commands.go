/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/krotik/tracestore/config"
	"github.com/krotik/tracestore/server"
	"github.com/krotik/tracestore/trace"
	"github.com/spf13/cobra"
)

/*
RootOptions holds the global flags of all commands.
*/
type RootOptions struct {
	ConfigFile  string // Configuration file
	Incremental bool   // Flag if the store should be opened for an incremental run
}

/*
ContextOptions holds the flags which select an execution context.
*/
type ContextOptions struct {
	*RootOptions
	ScriptID string   // Script id of the execution context
	ModelIDs []string // Model ids of the execution context
}

/*
NewRootCommand creates the root command of the TraceStore CLI.
*/
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tracestore",
		Short: "TraceStore " + config.ProductVersion,
		Long:  "Record and query dependency traces of model transformations.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			server.Incremental = opts.Incremental
			return config.LoadConfigFile(opts.ConfigFile)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", config.DefaultConfigFile,
		"configuration file (created with default values if it does not exist)")
	cmd.PersistentFlags().BoolVar(&opts.Incremental, "incremental", false,
		"open the store with the data of an earlier run")

	cmd.AddCommand(NewServerCommand(opts))
	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))

	return cmd
}

/*
NewServerCommand creates the server command.
*/
func NewServerCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the TraceStore server",
		Long: `Start the TraceStore server with the REST API.

The server runs until its lock file is modified.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			server.StartServer()
		},
	}
}

/*
NewRecordCommand creates the record command.
*/
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ContextOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <module id> <element id> <property> [property...]",
		Short: "Record property accesses",
		Long: `Record that a module element read properties of a model element.

Examples:
  tracestore record --script s1 --models m1,m2 rule1 e1 name
  tracestore record --script s1 --models m1,m2 rule1 e1 name size`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContext(opts, func(tm *trace.Manager) error {
				var ok bool
				var err error

				if len(args) == 3 {
					ok, err = tm.RecordAccess(args[0], args[1], args[2])
				} else {
					ok, err = tm.RecordAccesses(args[0], args[1], args[2:])
				}

				if err == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "recorded:", ok)
				}

				return err
			})
		},
	}

	addContextFlags(cmd, opts)

	return cmd
}

/*
NewFindCommand creates the find command.
*/
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	var property string

	opts := &ContextOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find <element id>",
		Short: "Find the traces which reach a model element",
		Long: `Find the traces of an execution context which reach a model element.

Examples:
  tracestore find --script s1 --models m1,m2 e1
  tracestore find --script s1 --models m1,m2 --property name e1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContext(opts, func(tm *trace.Manager) error {
				var traces []*trace.Trace
				var err error

				if property != "" {
					traces, err = tm.FindTracesByProperty(args[0], property)
				} else {
					traces, err = tm.FindTraces(args[0])
				}

				if err == nil {
					if traces == nil {
						traces = []*trace.Trace{}
					}

					err = writeJSON(cmd.OutOrStdout(), traces)
				}

				return err
			})
		},
	}

	addContextFlags(cmd, opts)
	cmd.Flags().StringVar(&property, "property", "", "only return traces which accessed this property")

	return cmd
}

/*
NewInfoCommand creates the info command.
*/
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show statistics of the trace store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(tm *trace.Manager) error {
				info, err := tm.Info()

				if err == nil {
					err = writeJSON(cmd.OutOrStdout(), info)
				}

				return err
			})
		},
	}
}

/*
addContextFlags adds the execution context flags to a command.
*/
func addContextFlags(cmd *cobra.Command, opts *ContextOptions) {
	cmd.Flags().StringVar(&opts.ScriptID, "script", "", "script id of the execution context")
	cmd.Flags().StringSliceVar(&opts.ModelIDs, "models", nil, "model ids of the execution context")
	cmd.MarkFlagRequired("script")
}

/*
withContext runs a function on the trace store after the execution context
was set.
*/
func withContext(opts *ContextOptions, f func(*trace.Manager) error) error {
	return withManager(func(tm *trace.Manager) error {
		if err := tm.SetExecutionContext(opts.ScriptID, opts.ModelIDs); err != nil {
			return err
		}

		return f(tm)
	})
}

/*
withManager runs a function on the trace store as a single server operation.
*/
func withManager(f func(*trace.Manager) error) error {
	var err error

	executed := false

	server.StartServerWithSingleOp(func(tm *trace.Manager) bool {
		executed = true
		err = f(tm)
		return true
	})

	if err == nil && !executed {
		err = fmt.Errorf("Could not open trace store")
	}

	return err
}

/*
writeJSON writes an indented JSON document.
*/
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
