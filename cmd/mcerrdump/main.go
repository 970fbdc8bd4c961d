// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

// mcerrdump decodes a memory controller fault from a captured register
// dump, using a YAML chip profile instead of a compiled-in chip backend.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/thediveo/mcerrs"
	"github.com/thediveo/mcerrs/profile"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "mcerrdump:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("mcerrdump", pflag.ContinueOnError)
	profilename := fs.StringP("profile", "p", "", "chip profile in YAML format")
	dumpname := fs.StringP("dump", "d", "", "register dump to decode, \"-\" for stdin")
	diagnostics := fs.Bool("diagnostics", false, "also report fault diagnostics")
	silence := fs.Bool("silence", false, "only gather diagnostics, don't report the fault")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *profilename == "" {
		return fmt.Errorf("no chip profile specified, use --profile")
	}
	if *dumpname == "" {
		return fmt.Errorf("no register dump specified, use --dump")
	}

	pf, err := os.Open(*profilename)
	if err != nil {
		return err
	}
	p, err := profile.Load(pf)
	pf.Close()
	if err != nil {
		return err
	}

	df := os.Stdin
	if *dumpname != "-" {
		df, err = os.Open(*dumpname)
		if err != nil {
			return err
		}
		defer df.Close()
	}
	dump, err := mcerrs.ParseDump(df)
	if err != nil {
		return err
	}

	c, err := p.Controller(dump, out)
	if err != nil {
		return err
	}
	defer c.Close()
	c.Silence(*silence)
	c.ServiceFault(0)
	if *diagnostics {
		return c.WriteDiagnostics(out)
	}
	return nil
}
