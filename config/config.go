/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package config contains the configuration of TraceStore. The configuration is
a JSON file which is created with default values if it does not exist.
*/
package config

import (
	"fmt"
	"strconv"

	"github.com/krotik/common/errorutil"
	"github.com/krotik/common/fileutil"
)

// Global variables
// ================

/*
ProductVersion is the current version of TraceStore
*/
const ProductVersion = "1.0.0"

/*
DefaultConfigFile is the default config file which will be used to configure TraceStore
*/
var DefaultConfigFile = "tracestore.config.json"

/*
Known configuration options for TraceStore
*/
const (
	BackendURL              = "BackendURL"
	BackendUser             = "BackendUser"
	BackendPassword         = "BackendPassword"
	CreateSchema            = "CreateSchema"
	Partition               = "Partition"
	HTTPHost                = "HTTPHost"
	HTTPPort                = "HTTPPort"
	LockFile                = "LockFile"
	EnableMetrics           = "EnableMetrics"
	EnableFeed              = "EnableFeed"
	FeedConnections         = "FeedConnections"
	EnableECAL              = "EnableECAL"
	ECALScriptFolder        = "ECALScriptFolder"
	ECALEntryScript         = "ECALEntryScript"
	ECALLogLevel            = "ECALLogLevel"
	ECALLogFile             = "ECALLogFile"
	OpLogHistory            = "OpLogHistory"
	BadgerSyncWrites        = "BadgerSyncWrites"
	BadgerGCIntervalSeconds = "BadgerGCIntervalSeconds"
)

/*
DefaultConfig is the defaut configuration
*/
var DefaultConfig = map[string]interface{}{
	BackendURL:              "plocal:db",
	BackendUser:             "admin",
	BackendPassword:         "admin",
	CreateSchema:            true,
	Partition:               "main",
	HTTPHost:                "localhost",
	HTTPPort:                "9191",
	LockFile:                "tracestore.lck",
	EnableMetrics:           true,
	EnableFeed:              true,
	FeedConnections:         100.0,
	EnableECAL:              false,
	ECALScriptFolder:        "scripts",
	ECALEntryScript:         "main.ecal",
	ECALLogLevel:            "info",
	ECALLogFile:             "",
	OpLogHistory:            100.0,
	BadgerSyncWrites:        true,
	BadgerGCIntervalSeconds: 300.0,
}

/*
Config is the actual config which is used
*/
var Config map[string]interface{}

/*
LoadConfigFile loads a given config file. If the config file does not exist it is
created with the default options.
*/
func LoadConfigFile(configfile string) error {
	var err error

	Config, err = fileutil.LoadConfig(configfile, DefaultConfig)

	return err
}

/*
LoadDefaultConfig loads the default configuration.
*/
func LoadDefaultConfig() {
	data := make(map[string]interface{})
	for k, v := range DefaultConfig {
		data[k] = v
	}

	Config = data
}

// Helper functions
// ================

/*
Str reads a config value as a string value.
*/
func Str(key string) string {
	return fmt.Sprint(Config[key])
}

/*
Int reads a config value as an int value.
*/
func Int(key string) int64 {
	ret, err := strconv.ParseInt(fmt.Sprint(Config[key]), 10, 64)

	errorutil.AssertTrue(err == nil,
		fmt.Sprintf("Could not parse config key %v: %v", key, err))

	return ret
}

/*
Bool reads a config value as a boolean value.
*/
func Bool(key string) bool {
	ret, err := strconv.ParseBool(fmt.Sprint(Config[key]))

	errorutil.AssertTrue(err == nil,
		fmt.Sprintf("Could not parse config key %v: %v", key, err))

	return ret
}
