package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

const (
	msgRequired = "field required"
	msgNotNull  = "must not be null"
)

// TaskCreate is a validated and normalized create request.
type TaskCreate struct {
	Title       string
	Description *string
	Priority    int
	DueDate     time.Time
	Tags        []string
}

// TaskUpdate is a validated sparse update. Nil pointers mean "not sent".
// DescriptionSet and TagsSet distinguish an explicit value from absence,
// since a nil description clears it and an empty tag list removes all tags.
type TaskUpdate struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Priority       *int
	DueDate        *time.Time
	Completed      *bool
	Tags           []string
	TagsSet        bool
}

// IsEmpty reports whether the update carries no field at all.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && !u.DescriptionSet && u.Priority == nil &&
		u.DueDate == nil && u.Completed == nil && !u.TagsSet
}

// ListQuery is a validated list request.
type ListQuery struct {
	Completed  *bool
	Priority   *int
	Tags       []string
	Pagination utils.PaginationParams
}

// Validator turns raw request input into normalized task input.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New creates a Validator. now is the reference clock used for the
// due date check; it defaults to time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{
		validate: validator.New(),
		now:      now,
	}
}

// ValidateCreate validates a create request body.
func (v *Validator) ValidateCreate(body []byte) (TaskCreate, error) {
	var input TaskCreate

	fields, err := decodeObject(body)
	if err != nil {
		return input, err
	}

	errs := fieldErrors{}

	if raw, ok := present(fields, "title"); ok {
		if title, ok := v.title(raw, errs); ok {
			input.Title = title
		}
	} else {
		errs.add("title", msgRequired)
	}

	if raw, ok := fields["description"]; ok {
		input.Description = description(raw, errs)
	}

	if raw, ok := present(fields, "priority"); ok {
		if priority, ok := v.priority(raw, errs); ok {
			input.Priority = priority
		}
	} else {
		errs.add("priority", msgRequired)
	}

	if raw, ok := present(fields, "due_date"); ok {
		if dueDate, ok := v.dueDate(raw, errs); ok {
			input.DueDate = dueDate
		}
	} else {
		errs.add("due_date", msgRequired)
	}

	if raw, ok := present(fields, "tags"); ok {
		input.Tags = v.tags(raw, errs)
	}

	return input, errs.err()
}

// ValidateUpdate validates a sparse update body. An empty body is an
// update that changes nothing.
func (v *Validator) ValidateUpdate(body []byte) (TaskUpdate, error) {
	var input TaskUpdate

	fields, err := decodeObject(body)
	if err != nil {
		return input, err
	}

	errs := fieldErrors{}

	if raw, ok := fields["title"]; ok {
		if isNull(raw) {
			errs.add("title", msgNotNull)
		} else if title, ok := v.title(raw, errs); ok {
			input.Title = &title
		}
	}

	if raw, ok := fields["description"]; ok {
		input.Description = description(raw, errs)
		input.DescriptionSet = true
	}

	if raw, ok := fields["priority"]; ok {
		if isNull(raw) {
			errs.add("priority", msgNotNull)
		} else if priority, ok := v.priority(raw, errs); ok {
			input.Priority = &priority
		}
	}

	if raw, ok := fields["due_date"]; ok {
		if isNull(raw) {
			errs.add("due_date", msgNotNull)
		} else if dueDate, ok := v.dueDate(raw, errs); ok {
			input.DueDate = &dueDate
		}
	}

	if raw, ok := fields["completed"]; ok {
		var completed bool
		if isNull(raw) {
			errs.add("completed", msgNotNull)
		} else if err := json.Unmarshal(raw, &completed); err != nil {
			errs.add("completed", "must be a boolean")
		} else {
			input.Completed = &completed
		}
	}

	// null tags behave like an absent field
	if raw, ok := present(fields, "tags"); ok {
		input.Tags = v.tags(raw, errs)
		input.TagsSet = true
	}

	return input, errs.err()
}

// ValidateListQuery validates the filters and pagination of a list request.
func (v *Validator) ValidateListQuery(query url.Values) (ListQuery, error) {
	var input ListQuery
	errs := fieldErrors{}

	if raw := query.Get("completed"); raw != "" {
		if completed, ok := parseBool(raw); ok {
			input.Completed = &completed
		} else {
			errs.add("completed", "must be a boolean")
		}
	}

	if raw := query.Get("priority"); raw != "" {
		priority, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs.add("priority", "must be an integer")
		case v.validate.Var(priority, priorityRule) != nil:
			errs.add("priority", priorityMessage)
		default:
			input.Priority = &priority
		}
	}

	if raw := query.Get("tags"); raw != "" {
		input.Tags = uniqueNonEmpty(strings.Split(raw, ","))
	}

	pagination, problems := utils.ParsePaginationParams(query)
	input.Pagination = pagination
	errs.merge(problems)

	return input, errs.err()
}

// NormalizeTagName lowercases a tag name and strips surrounding whitespace.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var (
	titleRule       = fmt.Sprintf("min=%d,max=%d", constants.MinTitleLength, constants.MaxTitleLength)
	titleMessage    = fmt.Sprintf("must be between %d and %d characters", constants.MinTitleLength, constants.MaxTitleLength)
	priorityRule    = fmt.Sprintf("gte=%d,lte=%d", constants.MinPriority, constants.MaxPriority)
	priorityMessage = fmt.Sprintf("must be between %d and %d", constants.MinPriority, constants.MaxPriority)
	tagNameRule     = fmt.Sprintf("max=%d", models.MaxTagNameLength)
)

func (v *Validator) title(raw json.RawMessage, errs fieldErrors) (string, bool) {
	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		errs.add("title", "must be a string")
		return "", false
	}
	if err := v.validate.Var(title, titleRule); err != nil {
		errs.add("title", titleMessage)
		return "", false
	}
	return title, true
}

func (v *Validator) priority(raw json.RawMessage, errs fieldErrors) (int, bool) {
	var priority int
	if err := json.Unmarshal(raw, &priority); err != nil {
		errs.add("priority", "must be an integer")
		return 0, false
	}
	if err := v.validate.Var(priority, priorityRule); err != nil {
		errs.add("priority", priorityMessage)
		return 0, false
	}
	return priority, true
}

func (v *Validator) dueDate(raw json.RawMessage, errs fieldErrors) (time.Time, bool) {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		errs.add("due_date", "must be a date string in YYYY-MM-DD format")
		return time.Time{}, false
	}
	dueDate, err := time.Parse(constants.DateLayout, value)
	if err != nil {
		errs.add("due_date", "must be a valid date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	if dueDate.Before(v.today()) {
		errs.add("due_date", "due date cannot be in the past")
		return time.Time{}, false
	}
	return dueDate, true
}

func (v *Validator) tags(raw json.RawMessage, errs fieldErrors) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		errs.add("tags", "must be a list of strings")
		return nil
	}

	names := make([]string, 0, len(items))
	for i, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err != nil || isNull(item) {
			errs.add(fmt.Sprintf("tags.%d", i), "must be a string")
			continue
		}
		normalized := NormalizeTagName(name)
		if normalized == "" {
			errs.add("tags", "tag names cannot be empty")
			continue
		}
		if err := v.validate.Var(normalized, tagNameRule); err != nil {
			errs.add("tags", fmt.Sprintf("tag names must be at most %d characters", models.MaxTagNameLength))
			continue
		}
		names = append(names, normalized)
	}

	return uniqueNonEmpty(names)
}

// today is the current calendar date of the reference clock, as UTC midnight
// so it compares directly with parsed due dates.
func (v *Validator) today() time.Time {
	y, m, d := v.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func description(raw json.RawMessage, errs fieldErrors) *string {
	if isNull(raw) {
		return nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		errs.add("description", "must be a string")
		return nil
	}
	return &value
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(body)) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, &ValidationError{Details: map[string]string{"body": "must be a JSON object"}}
	}
	return fields, nil
}

// present returns the raw value of key unless it is missing or null.
func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on", "t", "y":
		return true, true
	case "false", "0", "no", "off", "f", "n":
		return false, true
	default:
		return false, false
	}
}

// uniqueNonEmpty normalizes names, drops empty ones and removes duplicates
// while keeping first-seen order.
func uniqueNonEmpty(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))

	for _, name := range names {
		name = NormalizeTagName(name)
		if name == "" {
			continue
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}

	return result
}
