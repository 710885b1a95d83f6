package screenshots

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// RenameOp moves one screenshot from its current name to its rank-prefixed name.
type RenameOp struct {
	From   string
	To     string
	Temp   string
	Record RankedScreenshot
}

// RenamePlan is the complete, validated set of moves for one platform directory.
type RenamePlan struct {
	Dir string
	Ops []RenameOp
	// Unmatched lists oracle records whose original_name matched no file.
	Unmatched []string
}

// NormalizeWhitespace replaces every Unicode space/line/paragraph separator with a plain space.
// Screenshot tools emit names with U+202F and similar characters.
func NormalizeWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.In(r, unicode.Zs, unicode.Zl, unicode.Zp) {
			return ' '
		}
		return r
	}, s)
}

// TitleSlug turns a title into a file-name-safe token: spaces become underscores,
// anything that is not a letter, digit or underscore is dropped.
func TitleSlug(title string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "screenshot"
	}
	return b.String()
}

// RankedFileName is the final name for a ranked screenshot. The source extension is kept.
func RankedFileName(rank int, title, sourceName string) string {
	ext := strings.ToLower(filepath.Ext(sourceName))
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("%02d_%s%s", rank, TitleSlug(title), ext)
}

// PlanRenames computes every final name before anything moves.
// It rejects plans where two files would share a final name, or where a final name
// belongs to a file that is not part of the plan.
func PlanRenames(dir string, files []string, ranked []RankedScreenshot) (RenamePlan, error) {
	plan := RenamePlan{Dir: dir}

	byKey := make(map[string]string, len(files))
	for _, f := range files {
		byKey[NormalizeWhitespace(f)] = f
	}

	targets := make(map[string]string, len(ranked))
	for _, r := range ranked {
		name, ok := byKey[NormalizeWhitespace(r.OriginalName)]
		if !ok {
			plan.Unmatched = append(plan.Unmatched, r.OriginalName)
			continue
		}
		delete(byKey, NormalizeWhitespace(r.OriginalName))

		to := RankedFileName(r.Rank, r.Title, name)
		if prev, clash := targets[strings.ToLower(to)]; clash {
			return RenamePlan{}, fmt.Errorf("PlanRenames: %s and %s both map to %s", prev, name, to)
		}
		targets[strings.ToLower(to)] = name

		plan.Ops = append(plan.Ops, RenameOp{
			From:   name,
			To:     to,
			Record: r,
		})
	}

	// Files left out of the plan must not be overwritten.
	for _, untouched := range byKey {
		if owner, clash := targets[strings.ToLower(untouched)]; clash {
			return RenamePlan{}, fmt.Errorf("PlanRenames: %s would overwrite unranked file %s", owner, untouched)
		}
	}

	// Temp names must not land on any listed file, final name, other temp name,
	// or anything else already in dir (e.g. leftovers of an interrupted run).
	taken := make(map[string]struct{}, 2*len(files)+len(plan.Ops))
	for _, f := range files {
		taken[strings.ToLower(f)] = struct{}{}
	}
	for k := range targets {
		taken[k] = struct{}{}
	}
	for i := range plan.Ops {
		op := &plan.Ops[i]
		temp, err := pickTempName(dir, op.Record.Rank, op.From, taken)
		if err != nil {
			return RenamePlan{}, fmt.Errorf("PlanRenames: %w", err)
		}
		op.Temp = temp
		taken[strings.ToLower(temp)] = struct{}{}
	}
	return plan, nil
}

const maxTempAttempts = 1000

func pickTempName(dir string, rank int, from string, taken map[string]struct{}) (string, error) {
	ext := strings.ToLower(filepath.Ext(from))
	stem := strings.TrimSuffix(from, filepath.Ext(from))
	for n := 0; n < maxTempAttempts; n++ {
		name := fmt.Sprintf("_temp_%02d_%s%s", rank, stem, ext)
		if n > 0 {
			name = fmt.Sprintf("_temp_%02d_%s_%d%s", rank, stem, n, ext)
		}
		if _, ok := taken[strings.ToLower(name)]; ok {
			continue
		}
		if _, err := os.Lstat(filepath.Join(dir, name)); err == nil {
			continue
		}
		return name, nil
	}
	return "", fmt.Errorf("no free temporary name for %s", from)
}

// needsTemp reports whether some final name is the current name of another file in the plan,
// i.e. a direct move could clobber a file that has not moved yet.
func (p RenamePlan) needsTemp() bool {
	from := make(map[string]int, len(p.Ops))
	for i, op := range p.Ops {
		from[strings.ToLower(op.From)] = i
	}
	for i, op := range p.Ops {
		if j, ok := from[strings.ToLower(op.To)]; ok && j != i {
			return true
		}
	}
	return false
}

// Apply performs the moves. When any final name is still occupied by a pending source the moves
// go through temporary names in two passes; otherwise each file moves directly.
// It returns the number of files that now carry their final name.
func (p RenamePlan) Apply() (int, error) {
	if !p.needsTemp() {
		for i, op := range p.Ops {
			if op.From == op.To {
				continue
			}
			if err := os.Rename(filepath.Join(p.Dir, op.From), filepath.Join(p.Dir, op.To)); err != nil {
				return i, fmt.Errorf("RenamePlan.Apply: %s -> %s: %w", op.From, op.To, err)
			}
		}
		return len(p.Ops), nil
	}

	for _, op := range p.Ops {
		if _, err := os.Lstat(filepath.Join(p.Dir, op.Temp)); err == nil {
			return 0, fmt.Errorf("RenamePlan.Apply: temporary name %s already exists", op.Temp)
		}
	}
	for _, op := range p.Ops {
		if err := os.Rename(filepath.Join(p.Dir, op.From), filepath.Join(p.Dir, op.Temp)); err != nil {
			return 0, fmt.Errorf("RenamePlan.Apply: %s -> %s: %w", op.From, op.Temp, err)
		}
	}
	for i, op := range p.Ops {
		if err := os.Rename(filepath.Join(p.Dir, op.Temp), filepath.Join(p.Dir, op.To)); err != nil {
			return i, fmt.Errorf("RenamePlan.Apply: %s -> %s: %w", op.Temp, op.To, err)
		}
	}
	return len(p.Ops), nil
}
