package checks

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/dbguardian/dbguardian/internal/core"
)

var profileIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$#]*$`)

// ProfileCheck scans dba_profiles and verifies that every configured profile
// carries the required password verify function. Parameters: "function" names
// the function, "profiles" lists the profiles that must use it.
type ProfileCheck struct {
	meta
}

type profileRow struct {
	Profile string         `db:"PROFILE"`
	Limit   sql.NullString `db:"LIMIT"`
}

func (c ProfileCheck) Evaluate(ctx context.Context, q Querier, params map[string]any) (Result, error) {
	function := cast.ToString(params["function"])
	profiles, err := cast.ToStringSliceE(params["profiles"])
	if err != nil && params["profiles"] != nil {
		return Result{}, fmt.Errorf("parameter \"profiles\": %w", err)
	}

	if function == "" || len(profiles) == 0 {
		return Result{
			Status:   core.StatusPass,
			Actual:   "N/A",
			Expected: "N/A",
			Message:  "no password validation configuration specified",
		}, nil
	}

	quoted := make([]string, len(profiles))
	for i, p := range profiles {
		if !profileIdent.MatchString(p) {
			return Result{}, fmt.Errorf("invalid profile name %q", p)
		}
		quoted[i] = "'" + strings.ToUpper(p) + "'"
	}

	query := fmt.Sprintf(
		"SELECT profile, limit FROM dba_profiles WHERE resource_name = 'PASSWORD_VERIFY_FUNCTION' AND profile IN (%s) ORDER BY profile",
		strings.Join(quoted, ","),
	)

	var rows []profileRow
	if err := q.Select(ctx, &rows, query); err != nil {
		return Result{}, fmt.Errorf("query for %s: %w", c.id, err)
	}

	expected := fmt.Sprintf("%s on %d profile(s)", function, len(profiles))

	seen := make(map[string]struct{}, len(rows))
	var withFunction, withoutFunction, wrongFunction []string
	for _, r := range rows {
		seen[strings.ToUpper(r.Profile)] = struct{}{}
		switch {
		case !r.Limit.Valid || r.Limit.String == "" || strings.EqualFold(r.Limit.String, "NULL"):
			withoutFunction = append(withoutFunction, r.Profile)
		case strings.Contains(strings.ToUpper(r.Limit.String), strings.ToUpper(function)):
			withFunction = append(withFunction, r.Profile)
		default:
			wrongFunction = append(wrongFunction, fmt.Sprintf("%s(%s)", r.Profile, r.Limit.String))
		}
	}
	for _, p := range profiles {
		if _, ok := seen[strings.ToUpper(p)]; !ok {
			withoutFunction = append(withoutFunction, p)
		}
	}

	if len(withFunction) == len(profiles) && len(withoutFunction) == 0 && len(wrongFunction) == 0 {
		return Result{
			Status:   core.StatusPass,
			Actual:   fmt.Sprintf("all %d profile(s) configured", len(withFunction)),
			Expected: expected,
		}, nil
	}

	actual := "partial configuration"
	if len(wrongFunction) > 0 {
		actual = "wrong function: " + strings.Join(wrongFunction, ", ")
	} else if len(withoutFunction) > 0 {
		actual = "not configured: " + strings.Join(withoutFunction, ", ")
	}
	return Result{
		Status:   core.StatusFail,
		Actual:   actual,
		Expected: expected,
		Message:  c.description,
	}, nil
}
