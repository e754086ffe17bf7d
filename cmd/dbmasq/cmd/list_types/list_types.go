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

package list_types

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dbmasq/dbmasq/internal/generators/transformers"
)

const (
	TextFormatName = "text"
	JSONFormatName = "json"
)

var (
	Cmd = &cobra.Command{
		Use:   "list-types",
		Short: "list the built-in semantic type tags",
		Run: func(cmd *cobra.Command, args []string) {
			var err error
			switch format {
			case TextFormatName:
				err = listTypesText()
			case JSONFormatName:
				err = listTypesJson()
			default:
				err = fmt.Errorf(`unknown format %s, must be one of "%s" or "%s"`, format, TextFormatName, JSONFormatName)
			}
			if err != nil {
				log.Err(err).Msg("")
				os.Exit(1)
			}
		},
	}
	format string
)

type typeDescription struct {
	Name        string `json:"name"`
	CachePolicy string `json:"cache_policy"`
	Description string `json:"description"`
}

func describeTypes() []*typeDescription {
	var res []*typeDescription
	for _, tag := range transformers.Tags() {
		def, _ := transformers.Get(tag)
		res = append(res, &typeDescription{
			Name:        tag,
			CachePolicy: def.CachePolicy.String(),
			Description: def.Description,
		})
	}
	return res
}

func listTypesJson() error {
	return json.NewEncoder(os.Stdout).Encode(describeTypes())
}

func listTypesText() error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"name", "cache policy", "description"})
	for _, t := range describeTypes() {
		table.Append([]string{t.Name, t.CachePolicy, t.Description})
	}
	table.Render()
	return nil
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", TextFormatName, "output format [text|json]")
}
