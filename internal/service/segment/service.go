// Package segment builds and lists customer segments: a rule text is
// translated into a predicate, evaluated against the customer store, and the
// matched ids are frozen into the segment document.
package segment

import (
	"context"
	"strings"

	"github.com/xenocrm/crm-gateway/internal/errs"
	"github.com/xenocrm/crm-gateway/internal/model"
	"github.com/xenocrm/crm-gateway/internal/repository"
	"github.com/xenocrm/crm-gateway/internal/util"
	"go.mongodb.org/mongo-driver/bson"
)

// Translator converts rule text into a customer-store predicate.
type Translator interface {
	BuildQuery(ctx context.Context, rules string) (bson.M, error)
}

type Service struct {
	translator Translator
	customers  repository.CustomersRepository
	segments   repository.SegmentsRepository
	users      repository.UsersRepository
}

func New(
	translator Translator,
	customersRepo repository.CustomersRepository,
	segmentsRepo repository.SegmentsRepository,
	usersRepo repository.UsersRepository,
) *Service {
	return &Service{
		translator: translator,
		customers:  customersRepo,
		segments:   segmentsRepo,
		users:      usersRepo,
	}
}

// Preview translates the rules and counts matching customers. Zero matches is
// a valid answer, not an error.
func (s *Service) Preview(ctx context.Context, rules string) (int64, error) {
	if strings.TrimSpace(rules) == "" {
		return 0, errs.Validation("rules are required")
	}

	query, err := s.translator.BuildQuery(ctx, rules)
	if err != nil {
		return 0, err
	}

	count, err := s.customers.CountMatching(ctx, query)
	if err != nil {
		return 0, errs.Persistence(err, "count matching customers")
	}
	return count, nil
}

// Save translates the rules, snapshots the matching customer ids (projection
// only, never full documents), and persists the segment with the verbatim
// rule text. The snapshot is point-in-time: it never changes afterwards, even
// when the underlying customers do.
func (s *Service) Save(ctx context.Context, name, rules, createdBy string) (*model.Segment, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(rules) == "" || strings.TrimSpace(createdBy) == "" {
		return nil, errs.Validation("missing required fields: name, rules, or createdBy")
	}

	query, err := s.translator.BuildQuery(ctx, rules)
	if err != nil {
		return nil, err
	}

	ids, err := s.customers.IDsMatching(ctx, query)
	if err != nil {
		return nil, errs.Persistence(err, "query matching customers")
	}
	if ids == nil {
		ids = []string{}
	}

	seg := &model.Segment{
		ID:          util.NewID(),
		Name:        name,
		Rules:       []string{rules},
		CreatedBy:   createdBy,
		CustomerIDs: ids,
	}
	if err := s.segments.Insert(ctx, seg); err != nil {
		return nil, errs.Persistence(err, "save segment")
	}

	return seg, nil
}

// Fetch returns every segment, newest first, with createdBy resolved to
// {name,email}. Missing users degrade to a placeholder, not an error.
func (s *Service) Fetch(ctx context.Context) ([]model.SegmentView, error) {
	segs, err := s.segments.FindAll(ctx)
	if err != nil {
		return nil, errs.Persistence(err, "fetch segments")
	}

	creatorIDs := make([]string, 0, len(segs))
	seen := make(map[string]bool, len(segs))
	for _, sg := range segs {
		if sg.CreatedBy != "" && !seen[sg.CreatedBy] {
			seen[sg.CreatedBy] = true
			creatorIDs = append(creatorIDs, sg.CreatedBy)
		}
	}

	users, err := s.users.FindByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, errs.Persistence(err, "fetch segment creators")
	}
	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	views := make([]model.SegmentView, 0, len(segs))
	for _, sg := range segs {
		view := model.SegmentView{
			ID:          sg.ID,
			Name:        sg.Name,
			Rules:       sg.Rules,
			CustomerIDs: sg.CustomerIDs,
			CreatedAt:   sg.CreatedAt,
			UpdatedAt:   sg.UpdatedAt,
		}
		if u, ok := byID[sg.CreatedBy]; ok {
			view.CreatedBy = &model.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
		} else if sg.CreatedBy != "" {
			view.CreatedBy = &model.UserRef{ID: sg.CreatedBy, Name: "Unknown"}
		}
		views = append(views, view)
	}
	return views, nil
}
