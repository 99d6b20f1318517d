package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"neo-platform/internal/models"
)

// ErrNEONotFound is returned by inspect when no object matches
var ErrNEONotFound = errors.New("no matching NEOs exist in the database")

func inspectCmd(a *app) *cobra.Command {
	var (
		pdes    string
		name    string
		verbose bool
	)

	c := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect a NEO by primary designation or by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := a.load(cmd.Context())
			if err != nil {
				return err
			}

			neo, err := findNEO(catalog, pdes, name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printf(out, "%s\n", neo)
			if verbose {
				for _, ca := range catalog.ApproachesOf(neo) {
					printf(out, "- %s\n", ca.Describe(catalog))
				}
			}
			return nil
		},
	}

	c.Flags().StringVarP(&pdes, "pdes", "p", "", "Primary designation of the NEO")
	c.Flags().StringVarP(&name, "name", "n", "", "IAU name of the NEO")
	c.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also list every close approach of the NEO")
	c.MarkFlagsOneRequired("pdes", "name")
	c.MarkFlagsMutuallyExclusive("pdes", "name")
	return c
}

func findNEO(catalog *models.Catalog, pdes, name string) (*models.NearEarthObject, error) {
	var (
		neo *models.NearEarthObject
		ok  bool
	)
	if pdes != "" {
		neo, ok = catalog.NEOByDesignation(pdes)
	} else {
		neo, ok = catalog.NEOByName(name)
	}
	if !ok {
		return nil, fmt.Errorf("%w: pdes=%q name=%q", ErrNEONotFound, pdes, name)
	}
	return neo, nil
}
