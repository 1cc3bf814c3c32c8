package service

import (
	"context"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	broadcasterdomain "github.com/fieldside/rightsdesk/internal/broadcaster/domain"
	"github.com/fieldside/rightsdesk/internal/observability/metrics"
	packagedomain "github.com/fieldside/rightsdesk/internal/rightspackage/domain"
	"github.com/fieldside/rightsdesk/internal/suggestion/domain"
)

type Params struct {
	fx.In

	Log          *zap.Logger
	Metrics      *metrics.Metrics
	Packages     packagedomain.Repository
	Broadcasters broadcasterdomain.Repository
}

type service struct {
	log          *zap.Logger
	metrics      *metrics.Metrics
	packages     packagedomain.Repository
	broadcasters broadcasterdomain.Repository
}

func NewService(p Params) domain.Service {
	return &service{
		log:          p.Log.Named("suggestion.service"),
		metrics:      p.Metrics,
		packages:     p.Packages,
		broadcasters: p.Broadcasters,
	}
}

// SuggestBroadcasters ranks active broadcasters whose active packages cover
// the event's scope and date. Season and competition packages match on
// league, sport packages on sport. One suggestion per broadcaster: the most
// specific match wins, ties are broken by package name.
func (s *service) SuggestBroadcasters(ctx context.Context, req domain.SuggestRequest) ([]domain.Suggestion, error) {
	sportID := parseOptionalID(req.SportID)
	leagueID := parseOptionalID(req.LeagueID)
	if sportID == 0 && leagueID == 0 {
		return nil, domain.ErrMissingScope
	}
	s.metrics.RecordSuggestionQuery(ctx)

	packages, err := s.packages.ListActiveAt(ctx, req.EventDate)
	if err != nil {
		return nil, err
	}

	type match struct {
		pkg       packagedomain.RightsPackage
		matchType string
		priority  int
	}
	var matches []match
	for _, pkg := range packages {
		switch pkg.ScopeType {
		case packagedomain.ScopeSeason:
			if leagueID != 0 && pkg.LeagueID != nil && *pkg.LeagueID == leagueID {
				matches = append(matches, match{pkg, string(packagedomain.ScopeSeason), domain.PrioritySeason})
			}
		case packagedomain.ScopeCompetition:
			if leagueID != 0 && pkg.LeagueID != nil && *pkg.LeagueID == leagueID {
				matches = append(matches, match{pkg, string(packagedomain.ScopeCompetition), domain.PriorityCompetition})
			}
		case packagedomain.ScopeSport:
			if sportID != 0 && pkg.SportID != nil && *pkg.SportID == sportID {
				matches = append(matches, match{pkg, string(packagedomain.ScopeSport), domain.PrioritySport})
			}
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].priority != matches[j].priority {
			return matches[i].priority < matches[j].priority
		}
		return matches[i].pkg.Name < matches[j].pkg.Name
	})

	broadcasterIDs := make([]snowflake.ID, 0, len(matches))
	seen := make(map[snowflake.ID]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.pkg.BroadcasterID]; ok {
			continue
		}
		seen[m.pkg.BroadcasterID] = struct{}{}
		broadcasterIDs = append(broadcasterIDs, m.pkg.BroadcasterID)
	}

	broadcasters, err := s.broadcasters.FindByIDs(ctx, broadcasterIDs)
	if err != nil {
		return nil, err
	}
	active := make(map[snowflake.ID]string, len(broadcasters))
	for _, b := range broadcasters {
		if b.Status == broadcasterdomain.StatusActive {
			active[b.ID] = b.Name
		}
	}

	suggestions := make([]domain.Suggestion, 0, len(matches))
	suggested := make(map[snowflake.ID]struct{}, len(matches))
	for _, m := range matches {
		name, ok := active[m.pkg.BroadcasterID]
		if !ok {
			continue
		}
		if _, ok := suggested[m.pkg.BroadcasterID]; ok {
			continue
		}
		suggested[m.pkg.BroadcasterID] = struct{}{}
		suggestions = append(suggestions, domain.Suggestion{
			BroadcasterID:   m.pkg.BroadcasterID,
			BroadcasterName: name,
			PackageID:       m.pkg.ID,
			PackageName:     m.pkg.Name,
			MatchType:       m.matchType,
			Priority:        m.priority,
		})
	}
	return suggestions, nil
}

func parseOptionalID(raw string) snowflake.ID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0
	}
	return id
}
