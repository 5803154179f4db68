package main

import "fmt"

type versionCmd struct{ r *root }

func (v *versionCmd) Run() error {
	fmt.Fprintf(stdout, "%s version %s", v.r.program, version)
	if commit != "" {
		fmt.Fprintf(stdout, " (%s", commit)
		if date != "" {
			fmt.Fprintf(stdout, ", built %s", date)
		}
		fmt.Fprint(stdout, ")")
	}
	fmt.Fprintln(stdout)
	return nil
}
