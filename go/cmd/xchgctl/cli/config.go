/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cli

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vitess.io/distexchange/go/vt/vterrors"
)

const envPrefix = "XCHG"

// loadConfig fills the flags of fs not given on the command line from
// the environment, then from file. Flag names map to environment
// variables by upper-casing and replacing dashes with underscores.
func loadConfig(fs *pflag.FlagSet, file string) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return vterrors.Wrapf(err, "reading config file %s", file)
		}
	}

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || f.Name == "config" || !v.IsSet(f.Name) {
			return
		}
		value := v.GetString(f.Name)
		if strings.HasSuffix(f.Value.Type(), "Slice") {
			value = strings.Join(v.GetStringSlice(f.Name), ",")
		}
		if setErr := fs.Set(f.Name, value); setErr != nil {
			err = vterrors.Wrapf(setErr, "flag --%s", f.Name)
		}
	})
	return err
}
