package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// TagColors is the palette of color tokens handed out to new tags that do not
// pick one.
var TagColors = []string{"rose", "orange", "violet", "sky", "teal", "amber", "lime"}

// UserInput holds the caller-supplied fields of a new user.
type UserInput struct {
	Name      string
	JobTitle  string
	AvatarURL string
}

// TagInput holds the caller-supplied fields of a new tag.
type TagInput struct {
	Name  string
	Color string
}

// Registry owns the canonical collections of users, tags, custom-field
// definitions and tasks, and enforces the cascades that keep references
// between them consistent.
//
// Every mutating method validates its input before touching state, so a call
// that returns an error leaves the registry exactly as it was. Registry does
// no locking of its own; see Workspace for serialized access.
type Registry struct {
	ids    IDGenerator
	users  []models.User
	tags   []models.Tag
	fields []models.CustomField
	tasks  []models.Task // display order
}

// NewRegistry creates an empty registry that mints IDs with ids.
// A nil ids uses random UUIDs.
func NewRegistry(ids IDGenerator) *Registry {
	if ids == nil {
		ids = NewIDGenerator()
	}
	return &Registry{ids: ids}
}

// --- Users ---

// AddUser registers a new user under a fresh ID.
func (r *Registry) AddUser(in UserInput) (models.User, error) {
	u, err := normalizeUser("adding user", r.ids.NewID(UserIDPrefix), in)
	if err != nil {
		return models.User{}, err
	}
	r.users = append(r.users, u)
	return u, nil
}

// UpdateUser replaces the stored profile of an existing user and returns it
// as stored. Tasks reference users by ID, so the change is visible everywhere
// at once.
func (r *Registry) UpdateUser(u models.User) (models.User, error) {
	i := r.userIndex(u.ID)
	if i < 0 {
		return models.User{}, notFound("user", u.ID)
	}
	updated, err := normalizeUser("updating user", u.ID, UserInput{Name: u.Name, JobTitle: u.JobTitle, AvatarURL: u.AvatarURL})
	if err != nil {
		return models.User{}, err
	}
	r.users[i] = updated
	return updated, nil
}

// normalizeUser trims the profile fields, requires a name and job title, and
// falls back to an avatar keyed by id.
func normalizeUser(op, id string, in UserInput) (models.User, error) {
	u := models.User{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		JobTitle:  strings.TrimSpace(in.JobTitle),
		AvatarURL: strings.TrimSpace(in.AvatarURL),
	}
	if u.Name == "" || u.JobTitle == "" {
		return models.User{}, invalidOp(op, "name and job title are required")
	}
	if u.AvatarURL == "" {
		u.AvatarURL = "https://i.pravatar.cc/150?u=" + id
	}
	return u, nil
}

// RemoveUser deletes a user and unassigns every task assigned to it.
// AddedBy is history and keeps pointing at the removed ID.
func (r *Registry) RemoveUser(id string) error {
	i := r.userIndex(id)
	if i < 0 {
		return notFound("user", id)
	}
	r.users = append(r.users[:i:i], r.users[i+1:]...)
	for j := range r.tasks {
		if r.tasks[j].AssigneeID == id {
			r.tasks[j].AssigneeID = ""
		}
	}
	return nil
}

// User returns the user with the given ID.
func (r *Registry) User(id string) (models.User, error) {
	i := r.userIndex(id)
	if i < 0 {
		return models.User{}, notFound("user", id)
	}
	return r.users[i], nil
}

// Users returns all users in insertion order.
func (r *Registry) Users() []models.User {
	return append([]models.User(nil), r.users...)
}

func (r *Registry) userIndex(id string) int {
	for i := range r.users {
		if r.users[i].ID == id {
			return i
		}
	}
	return -1
}

// --- Tags ---

// AddTag registers a new tag under a fresh ID.
func (r *Registry) AddTag(in TagInput) (models.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Tag{}, invalidOp("adding tag", "name is required")
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = TagColors[len(r.tags)%len(TagColors)]
	}

	tag := models.Tag{ID: r.ids.NewID(TagIDPrefix), Name: name, Color: color}
	r.tags = append(r.tags, tag)
	return tag, nil
}

// RemoveTag deletes a tag and drops it from every task's tag set.
func (r *Registry) RemoveTag(id string) error {
	i := r.tagIndex(id)
	if i < 0 {
		return notFound("tag", id)
	}
	r.tags = append(r.tags[:i:i], r.tags[i+1:]...)
	for j := range r.tasks {
		r.tasks[j].TagIDs = removeString(r.tasks[j].TagIDs, id)
	}
	return nil
}

// Tag returns the tag with the given ID.
func (r *Registry) Tag(id string) (models.Tag, error) {
	i := r.tagIndex(id)
	if i < 0 {
		return models.Tag{}, notFound("tag", id)
	}
	return r.tags[i], nil
}

// Tags returns all tags in insertion order.
func (r *Registry) Tags() []models.Tag {
	return append([]models.Tag(nil), r.tags...)
}

func (r *Registry) tagIndex(id string) int {
	for i := range r.tags {
		if r.tags[i].ID == id {
			return i
		}
	}
	return -1
}

// --- Custom fields ---

// AddCustomField defines a new free-text column.
func (r *Registry) AddCustomField(name string) (models.CustomField, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CustomField{}, invalidOp("adding custom field", "name is required")
	}
	f := models.CustomField{ID: r.ids.NewID(CustomFieldIDPrefix), Name: name}
	r.fields = append(r.fields, f)
	return f, nil
}

// RemoveCustomField deletes a definition and the matching value from every task.
func (r *Registry) RemoveCustomField(id string) error {
	i := r.fieldIndex(id)
	if i < 0 {
		return notFound("custom field", id)
	}
	r.fields = append(r.fields[:i:i], r.fields[i+1:]...)
	for j := range r.tasks {
		delete(r.tasks[j].CustomFields, id)
	}
	return nil
}

// CustomField returns the definition with the given ID.
func (r *Registry) CustomField(id string) (models.CustomField, error) {
	i := r.fieldIndex(id)
	if i < 0 {
		return models.CustomField{}, notFound("custom field", id)
	}
	return r.fields[i], nil
}

// CustomFields returns all definitions in insertion order.
func (r *Registry) CustomFields() []models.CustomField {
	return append([]models.CustomField(nil), r.fields...)
}

func (r *Registry) fieldIndex(id string) int {
	for i := range r.fields {
		if r.fields[i].ID == id {
			return i
		}
	}
	return -1
}

// --- Tasks ---

// Task returns a copy of the task with the given ID.
func (r *Registry) Task(id string) (models.Task, error) {
	i := r.taskIndex(id)
	if i < 0 {
		return models.Task{}, notFound("task", id)
	}
	return r.tasks[i].Clone(), nil
}

// Tasks returns copies of all tasks in display order.
func (r *Registry) Tasks() []models.Task {
	out := make([]models.Task, len(r.tasks))
	for i := range r.tasks {
		out[i] = r.tasks[i].Clone()
	}
	return out
}

// LogTime adds d to the self time of a task. It is the only path through
// which TimeLogged grows.
func (r *Registry) LogTime(taskID string, d time.Duration) error {
	if d < 0 {
		return invalidOp("logging time", "negative duration %s", d)
	}
	i := r.taskIndex(taskID)
	if i < 0 {
		return notFound("task", taskID)
	}
	r.tasks[i].TimeLogged += d
	return nil
}

func (r *Registry) taskIndex(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// checkTaskRefs verifies that every user, tag, parent and custom field a task
// points at exists. AddedBy is not checked.
func (r *Registry) checkTaskRefs(t models.Task) error {
	if t.AssigneeID != "" && r.userIndex(t.AssigneeID) < 0 {
		return notFound("user", t.AssigneeID)
	}
	for _, tagID := range t.TagIDs {
		if r.tagIndex(tagID) < 0 {
			return notFound("tag", tagID)
		}
	}
	for fieldID := range t.CustomFields {
		if r.fieldIndex(fieldID) < 0 {
			return notFound("custom field", fieldID)
		}
	}
	if t.ParentID != "" && r.taskIndex(t.ParentID) < 0 {
		return notFound("task", t.ParentID)
	}
	return nil
}

// --- Snapshots ---

// Snapshot returns a deep copy of every collection.
func (r *Registry) Snapshot() models.Snapshot {
	return models.Snapshot{
		Version:      models.SnapshotVersion,
		Users:        r.Users(),
		Tags:         r.Tags(),
		CustomFields: r.CustomFields(),
		Tasks:        r.Tasks(),
	}
}

// Restore replaces the registry contents with snap after validating it.
// On error the registry is unchanged.
func (r *Registry) Restore(snap models.Snapshot) error {
	next := &Registry{ids: r.ids}
	seen := make(map[string]bool)
	claim := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("restoring snapshot: %s with empty ID", kind)
		}
		if seen[id] {
			return fmt.Errorf("restoring snapshot: duplicate ID %s", id)
		}
		seen[id] = true
		return nil
	}

	for _, u := range snap.Users {
		if err := claim("user", u.ID); err != nil {
			return err
		}
		next.users = append(next.users, u)
	}
	for _, tag := range snap.Tags {
		if err := claim("tag", tag.ID); err != nil {
			return err
		}
		next.tags = append(next.tags, tag)
	}
	for _, f := range snap.CustomFields {
		if err := claim("custom field", f.ID); err != nil {
			return err
		}
		next.fields = append(next.fields, f)
	}
	for _, t := range snap.Tasks {
		if err := claim("task", t.ID); err != nil {
			return err
		}
		next.tasks = append(next.tasks, t.Clone())
	}

	for _, t := range next.tasks {
		if !t.Status.IsValid() {
			return fmt.Errorf("restoring snapshot: task %s: invalid status %q", t.ID, t.Status)
		}
		if !t.Priority.IsValid() {
			return fmt.Errorf("restoring snapshot: task %s: invalid priority %q", t.ID, t.Priority)
		}
		if t.TimeLogged < 0 {
			return fmt.Errorf("restoring snapshot: task %s: negative time logged", t.ID)
		}
		if err := next.checkTaskRefs(t); err != nil {
			return fmt.Errorf("restoring snapshot: task %s: %w", t.ID, err)
		}
	}
	if _, err := NewChildIndex(next.tasks).TotalTimes(); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}

	r.users, r.tags, r.fields, r.tasks = next.users, next.tags, next.fields, next.tasks
	return nil
}

func removeString(list []string, s string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
