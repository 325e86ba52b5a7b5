package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/labkey/pushdist/pkg/domain/interfaces"
	"github.com/labkey/pushdist/pkg/domain/model"
	"github.com/labkey/pushdist/pkg/domain/types"
)

const (
	listSchema         = "lists"
	customersQuery     = "Customers"
	distributionsQuery = "distributions"
	releasesQuery      = "Releases"
)

// rowString reads a list column as a trimmed string. Numeric columns such as
// versionNum come back from the JSON API as numbers.
func rowString(row interfaces.Row, key string) string {
	switch v := row[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (uc *publishUseCase) customers(ctx context.Context) ([]model.Customer, error) {
	rows, err := uc.labkey.SelectRows(ctx, uc.env.OpsContainer(), listSchema, customersQuery)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read the customer list")
	}

	customers := make([]model.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, model.Customer{
			Name:         rowString(row, "name"),
			ProjectName:  rowString(row, "projectName"),
			Folder:       rowString(row, "folder"),
			BuildTarget:  rowString(row, "buildTarget"),
			WhatsNew:     rowString(row, "whatsNew"),
			ReleaseNotes: rowString(row, "releaseNotes"),
		})
	}
	return customers, nil
}

func (uc *publishUseCase) distributions(ctx context.Context) (model.Distributions, error) {
	rows, err := uc.labkey.SelectRows(ctx, uc.env.OpsContainer(), listSchema, distributionsQuery)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read the distribution list")
	}

	dists := make(model.Distributions, 0, len(rows))
	for _, row := range rows {
		dists = append(dists, model.Distribution{
			Name:             rowString(row, "name"),
			BaseDistribution: rowString(row, "baseDistribution"),
		})
	}
	return dists, nil
}

func (uc *publishUseCase) printCustomers(customers []model.Customer) {
	for _, c := range customers {
		uc.console.Printf(" -- %s\n", c.Name)
	}
}

// selectCustomers narrows the list to the named customer, or asks the
// operator to confirm publishing to everyone when no name is given.
func (uc *publishUseCase) selectCustomers(customers []model.Customer, name string) ([]model.Customer, error) {
	if name != "" {
		for _, c := range customers {
			if c.MatchesName(name) {
				return []model.Customer{c}, nil
			}
		}
		uc.console.Printf("The customer specified on the command line, %s, was not found in the list of available customer pages.\n", name)
		uc.console.Printf("Current customers with Download Pages are: \n")
		uc.printCustomers(customers)
		return nil, goerr.Wrap(types.ErrCustomerNotFound, "unknown customer", goerr.V("customer", name))
	}

	uc.console.Printf("You have not specified a customer name on the command line.\n")
	uc.console.Printf("This means you will push the build to these customers: \n")
	uc.printCustomers(customers)
	uc.console.Printf("\n")
	if err := uc.console.Confirm(confirmPrompt); err != nil {
		return nil, err
	}
	return customers, nil
}

// lookupRelease finds the Releases row of the update type and resolves the
// build to publish.
func (uc *publishUseCase) lookupRelease(ctx context.Context, opts model.PublishOptions) (*model.BuildSelection, error) {
	rows, err := uc.labkey.SelectRows(ctx, uc.env.OpsContainer(), listSchema, releasesQuery)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read the release list")
	}

	releases := make([]model.Release, 0, len(rows))
	for _, row := range rows {
		releases = append(releases, model.Release{
			Version:    rowString(row, "version"),
			BuildType:  rowString(row, "buildType"),
			VersionNum: rowString(row, "versionNum"),
		})
	}

	for _, r := range releases {
		if r.Version == opts.UpdateType.String() {
			return &model.BuildSelection{
				UpdateType: opts.UpdateType,
				BuildID:    model.BuildLocator(opts.BuildID),
				BuildType:  r.BuildType,
				VersionNum: r.VersionNum,
			}, nil
		}
	}

	uc.console.Printf("The update type specified on the command line, %s, was not found in the list of available releases.\n", opts.UpdateType)
	uc.console.Printf("Current releases in list are: \n")
	for _, r := range releases {
		uc.console.Printf(" -- %s\n", r.Version)
	}
	return nil, goerr.Wrap(types.ErrReleaseNotFound, "no release row for update type", goerr.V("update_type", opts.UpdateType))
}
