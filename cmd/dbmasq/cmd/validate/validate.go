// Copyright 2025 Dbmasq
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package validate

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dbmasq/dbmasq/internal/domains"
	"github.com/dbmasq/dbmasq/internal/generators/transformers"
	"github.com/dbmasq/dbmasq/internal/utils/logger"
)

var (
	Cmd = &cobra.Command{
		Use:   "validate",
		Short: "validate the configuration and print the effective plan",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Fatal().Err(err).Msg("")
			}

			Config.Obfuscation.SetDefaults()
			if err := Config.Obfuscation.Validate(); err != nil {
				log.Fatal().Err(err).Msg("configuration is invalid")
			}
			// Resolves every configured type tag, including custom types.
			if _, err := transformers.NewValueGenerator(&Config.Obfuscation); err != nil {
				log.Fatal().Err(err).Msg("configuration is invalid")
			}

			if printEffective {
				if err := yaml.NewEncoder(os.Stdout).Encode(Config); err != nil {
					log.Fatal().Err(err).Msg("cannot encode effective config")
				}
			}
			log.Info().Msg("configuration is valid")
		},
	}
	Config         = domains.NewConfig()
	printEffective bool
)

func init() {
	Cmd.Flags().BoolVarP(&printEffective, "print", "p", false, "print the effective configuration as YAML")
}
