// Package content loads the YAML and Lua content a fight is built from and
// cross-validates every reference between them.
package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/alteration"
	"github.com/cory-johannsen/arena/internal/game/fight"
	"github.com/cory-johannsen/arena/internal/game/monster"
	"github.com/cory-johannsen/arena/internal/scripting"
)

// GlobalScriptDir is the subdirectory of the scripts root loaded into the
// shared scope every domain without its own directory falls back to.
const GlobalScriptDir = "global"

// Bundle is the validated, read-only content set.
type Bundle struct {
	Alterations *alteration.Registry
	Actions     *action.Registry
	Monsters    map[string]*monster.Template
	Planners    *ai.Registry
	Scripts     *scripting.Manager

	logger *zap.Logger
}

// Load reads every content directory named by cfg.
//
// Precondition: logger must not be nil.
// Postcondition: Returns a Bundle whose cross-references all resolve, or the
// first error. A *fight.ConfigurationError reports a dangling reference.
func Load(cfg config.ContentConfig, logger *zap.Logger) (*Bundle, error) {
	start := time.Now()

	alts, err := alteration.LoadDirectory(cfg.Alterations)
	if err != nil {
		return nil, fmt.Errorf("loading alterations: %w", err)
	}
	acts, err := action.LoadDirectory(cfg.Actions)
	if err != nil {
		return nil, fmt.Errorf("loading actions: %w", err)
	}
	if err := acts.Validate(alts); err != nil {
		return nil, err
	}
	templates, err := monster.LoadTemplates(cfg.Monsters)
	if err != nil {
		return nil, fmt.Errorf("loading monsters: %w", err)
	}

	b := &Bundle{
		Alterations: alts,
		Actions:     acts,
		Monsters:    monster.Index(templates),
		Planners:    ai.NewRegistry(acts),
		Scripts:     scripting.NewManager(logger),
		logger:      logger,
	}
	if err := b.loadAI(cfg); err != nil {
		b.Close()
		return nil, err
	}
	for _, tmpl := range templates {
		if err := b.checkTemplate(tmpl); err != nil {
			b.Close()
			return nil, err
		}
	}

	logger.Info("content loaded",
		zap.Int("alterations", alts.Len()),
		zap.Int("actions", len(acts.IDs())),
		zap.Int("monsters", len(templates)),
		zap.Strings("ai_domains", b.Planners.IDs()),
		zap.Strings("script_scopes", b.Scripts.Scopes()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return b, nil
}

func (b *Bundle) loadAI(cfg config.ContentConfig) error {
	if cfg.Scripts != "" {
		global := filepath.Join(cfg.Scripts, GlobalScriptDir)
		if isDir(global) {
			if err := b.Scripts.LoadGlobal(global, cfg.ScriptInstructionLimit); err != nil {
				return err
			}
		}
	}
	if cfg.AI == "" {
		return nil
	}
	domains, err := ai.LoadDomains(cfg.AI)
	if err != nil {
		return err
	}
	for _, d := range domains {
		if cfg.Scripts != "" {
			dir := filepath.Join(cfg.Scripts, d.ID)
			if isDir(dir) {
				if err := b.Scripts.LoadScope(d.ID, dir, cfg.ScriptInstructionLimit); err != nil {
					return err
				}
			}
		}
		if err := b.Planners.Register(d, b.Scripts); err != nil {
			return err
		}
		for _, hook := range d.Hooks() {
			if !b.Scripts.HasHook(d.ID, hook) {
				return &fight.ConfigurationError{Kind: "hook", Ref: hook, Owner: d.ID}
			}
		}
	}
	return nil
}

func (b *Bundle) checkTemplate(tmpl *monster.Template) error {
	for _, ref := range tmpl.Actions {
		if _, ok := b.Actions.Get(ref); !ok {
			return &fight.ConfigurationError{Kind: "action", Ref: ref, Owner: tmpl.ID}
		}
	}
	if tmpl.AIDomain != "" {
		if _, ok := b.Planners.PlannerFor(tmpl.AIDomain); !ok {
			return &fight.ConfigurationError{Kind: "ai_domain", Ref: tmpl.AIDomain, Owner: tmpl.ID}
		}
	}
	return nil
}

// Close releases the Lua VMs.
func (b *Bundle) Close() {
	b.Scripts.Close()
}

// Monster builds a fighter from the template monsterID at level.
//
// Postcondition: Returns a *fight.ConfigurationError for an unknown template.
func (b *Bundle) Monster(fighterID, monsterID string, level int) (*fight.MonsterFighter, error) {
	tmpl, ok := b.Monsters[monsterID]
	if !ok {
		return nil, &fight.ConfigurationError{Kind: "monster", Ref: monsterID, Owner: fighterID}
	}
	return fight.NewMonsterFighter(fighterID, tmpl, level, b.Actions)
}

// Player builds a fighter from a profile snapshot.
func (b *Bundle) Player(snap fight.PlayerSnapshot) (*fight.PlayerFighter, error) {
	return fight.NewPlayerFighter(snap, b.Actions, b.Alterations)
}

// Provider returns an AI provider for domainID. An empty domainID yields a
// provider that always uses the fighter's first affordable attack.
//
// Postcondition: Returns a *fight.ConfigurationError for an unknown domain.
func (b *Bundle) Provider(domainID string) (*ai.Provider, error) {
	p, err := b.Planners.Provider(domainID, b.logger)
	if errors.Is(err, ai.ErrUnknownDomain) {
		return nil, &fight.ConfigurationError{Kind: "ai_domain", Ref: domainID, Owner: "provider"}
	}
	return p, err
}

// MonsterProvider returns the provider driving m according to its template.
func (b *Bundle) MonsterProvider(m *fight.MonsterFighter) (*ai.Provider, error) {
	return b.Provider(m.Template().AIDomain)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
