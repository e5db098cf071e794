// Package directory holds the broker's in-memory registry of users and
// groups. Nothing here is persisted; process exit destroys all of it.
//
// All state lives behind one RWMutex. Multi-step operations (renaming a
// user, adding a friend to a group, leaving a group) are single methods
// that mutate and compute their notification targets under the lock, so
// no caller can observe an intermediate state.
package directory

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"chatd/internal/constants"
	"chatd/internal/protocol"
)

var (
	ErrUserExists      = errors.New("username already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrAlreadyContact  = errors.New("already in contacts")
	ErrContactNotFound = errors.New("contact not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrAlreadyMember   = errors.New("already a member")
	ErrNotMember       = errors.New("not a member")
	ErrNotContact      = errors.New("not in contacts")
)

// User is a registered user. Contacts is an ordered set of usernames; a
// username appears at most once.
type User struct {
	Username string
	Nickname string
	Avatar   string
	Status   string
	Contacts []string
}

// Group is a named member set. IDs are assigned at creation as group_<N>
// and never recycled. Admin is the creator; it follows a username change
// but is not reassigned when the admin leaves.
type Group struct {
	ID      string
	Name    string
	Members []string
	Admin   string
}

type Directory struct {
	mu sync.RWMutex

	users  map[string]*User
	groups map[string]*Group

	// Insertion order, so listings are deterministic.
	userOrder  []string
	groupOrder []string
}

func New() *Directory {
	return &Directory{
		users:  make(map[string]*User),
		groups: make(map[string]*Group),
	}
}

// Register creates a user with the default profile. It fails if the
// username is already taken; users are never deleted.
func (d *Directory) Register(username string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[username]; ok {
		return ErrUserExists
	}
	d.users[username] = &User{
		Username: username,
		Nickname: username,
		Avatar:   constants.DefaultAvatar,
		Status:   constants.StatusOnline,
	}
	d.userOrder = append(d.userOrder, username)
	return nil
}

// Exists reports whether the username is registered.
func (d *Directory) Exists(username string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[username]
	return ok
}

// Profile returns the user's wire profile.
func (d *Directory) Profile(username string) (protocol.Profile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[username]
	if !ok {
		return protocol.Profile{}, false
	}
	return profileOf(u), true
}

// UpdateProfile merges the non-nil patch fields into the user's profile
// and returns the result.
func (d *Directory) UpdateProfile(username string, patch protocol.ProfilePatch) (protocol.Profile, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[username]
	if !ok {
		return protocol.Profile{}, false
	}
	if patch.Nickname != nil {
		u.Nickname = *patch.Nickname
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	return profileOf(u), true
}

// SetStatus records the user's presence/status string.
func (d *Directory) SetStatus(username, status string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[username]
	if !ok {
		return false
	}
	u.Status = status
	return true
}

// Search returns users whose username or nickname contains the query,
// case-insensitively. An empty query matches everyone.
func (d *Directory) Search(query string) []protocol.UserSummary {
	q := strings.ToLower(query)

	d.mu.RLock()
	defer d.mu.RUnlock()

	results := []protocol.UserSummary{}
	for _, username := range d.userOrder {
		u := d.users[username]
		if strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.Nickname), q) {
			results = append(results, summaryOf(u))
		}
	}
	return results
}

// AddContact appends contact to owner's contact list. The relationship is
// one-sided; no reciprocal edge is created.
func (d *Directory) AddContact(owner, contact string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	o, ok := d.users[owner]
	if !ok {
		return ErrUserNotFound
	}
	if _, ok := d.users[contact]; !ok {
		return ErrUserNotFound
	}
	if contains(o.Contacts, contact) {
		return ErrAlreadyContact
	}
	o.Contacts = append(o.Contacts, contact)
	return nil
}

func (d *Directory) RemoveContact(owner, contact string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	o, ok := d.users[owner]
	if !ok {
		return ErrUserNotFound
	}
	if !contains(o.Contacts, contact) {
		return ErrContactNotFound
	}
	o.Contacts = remove(o.Contacts, contact)
	return nil
}

// Contacts returns owner's contact list in stored order.
func (d *Directory) Contacts(owner string) []protocol.UserSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	o, ok := d.users[owner]
	if !ok {
		return []protocol.UserSummary{}
	}
	contacts := []protocol.UserSummary{}
	for _, name := range o.Contacts {
		if u, ok := d.users[name]; ok {
			contacts = append(contacts, summaryOf(u))
		}
	}
	return contacts
}

// ContactHolders returns the users whose contact lists include username.
func (d *Directory) ContactHolders(username string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.contactHoldersLocked(username)
}

func (d *Directory) contactHoldersLocked(username string) []string {
	holders := []string{}
	for _, name := range d.userOrder {
		if contains(d.users[name].Contacts, username) {
			holders = append(holders, name)
		}
	}
	return holders
}

// NotificationSet returns the users who should learn about username's
// profile or presence changes: everyone holding them as a contact plus
// every co-member of every group they are in (which includes the user
// themselves when they are in any group).
func (d *Directory) NotificationSet(username string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.notificationSetLocked(username)
}

func (d *Directory) notificationSetLocked(username string) []string {
	seen := make(map[string]bool)
	targets := []string{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			targets = append(targets, name)
		}
	}
	for _, name := range d.contactHoldersLocked(username) {
		add(name)
	}
	for _, gid := range d.groupOrder {
		g := d.groups[gid]
		if contains(g.Members, username) {
			for _, m := range g.Members {
				add(m)
			}
		}
	}
	return targets
}

// Rename is the whole of change_username against the registry: it migrates
// the user record, rewrites every contact list and group member list,
// reassigns group admins, and computes the notification targets — all under
// one lock acquisition. Targets may include the caller; exclusion is the
// router's business.
func (d *Directory) Rename(oldName, newName string) (protocol.Profile, []string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[oldName]
	if !ok {
		return protocol.Profile{}, nil, ErrUserNotFound
	}
	if _, taken := d.users[newName]; taken {
		return protocol.Profile{}, nil, ErrUsernameTaken
	}

	delete(d.users, oldName)
	u.Username = newName
	d.users[newName] = u
	for i, name := range d.userOrder {
		if name == oldName {
			d.userOrder[i] = newName
		}
	}

	for _, other := range d.users {
		for i, c := range other.Contacts {
			if c == oldName {
				other.Contacts[i] = newName
			}
		}
	}
	for _, g := range d.groups {
		for i, m := range g.Members {
			if m == oldName {
				g.Members[i] = newName
			}
		}
		if g.Admin == oldName {
			g.Admin = newName
		}
	}

	return profileOf(u), d.notificationSetLocked(newName), nil
}

// CreateGroup makes a new group with creator as sole member and admin and
// returns its id. IDs are group_<N> in creation order.
func (d *Directory) CreateGroup(name, creator string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := fmt.Sprintf("group_%d", len(d.groups)+1)
	d.groups[id] = &Group{
		ID:      id,
		Name:    name,
		Members: []string{creator},
		Admin:   creator,
	}
	d.groupOrder = append(d.groupOrder, id)
	return id
}

// JoinGroup adds username to the group and returns the group name plus the
// other members, for the join announcement.
func (d *Directory) JoinGroup(groupID, username string) (string, []string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.groups[groupID]
	if !ok {
		return "", nil, ErrGroupNotFound
	}
	if contains(g.Members, username) {
		return "", nil, ErrAlreadyMember
	}
	others := append([]string(nil), g.Members...)
	g.Members = append(g.Members, username)
	return g.Name, others, nil
}

// LeaveGroup removes username and returns the group name plus the
// remaining members. The group stays alive even when it empties.
func (d *Directory) LeaveGroup(groupID, username string) (string, []string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.groups[groupID]
	if !ok {
		return "", nil, ErrGroupNotFound
	}
	if !contains(g.Members, username) {
		return "", nil, ErrNotMember
	}
	g.Members = remove(g.Members, username)
	return g.Name, append([]string(nil), g.Members...), nil
}

// AddFriendToGroup checks every precondition of add_friend_to_group and
// performs the insertion atomically. It returns the group name, the full
// member list after insertion, and its size.
func (d *Directory) AddFriendToGroup(groupID, caller, friend string) (string, []string, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.groups[groupID]
	if !ok {
		return "", nil, 0, ErrGroupNotFound
	}
	if !contains(g.Members, caller) {
		return "", nil, 0, ErrNotMember
	}
	c, ok := d.users[caller]
	if !ok {
		return "", nil, 0, ErrNotMember
	}
	if _, ok := d.users[friend]; !ok {
		return "", nil, 0, ErrUserNotFound
	}
	if !contains(c.Contacts, friend) {
		return "", nil, 0, ErrNotContact
	}
	if contains(g.Members, friend) {
		return "", nil, 0, ErrAlreadyMember
	}
	g.Members = append(g.Members, friend)
	return g.Name, append([]string(nil), g.Members...), len(g.Members), nil
}

// GroupMessageTargets returns the group name and the members other than
// sender, failing unless sender is a member.
func (d *Directory) GroupMessageTargets(groupID, sender string) (string, []string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	g, ok := d.groups[groupID]
	if !ok {
		return "", nil, ErrGroupNotFound
	}
	if !contains(g.Members, sender) {
		return "", nil, ErrNotMember
	}
	others := []string{}
	for _, m := range g.Members {
		if m != sender {
			others = append(others, m)
		}
	}
	return g.Name, others, nil
}

// GroupsOf lists the groups username belongs to, in creation order.
func (d *Directory) GroupsOf(username string) []protocol.GroupSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	groups := []protocol.GroupSummary{}
	for _, gid := range d.groupOrder {
		g := d.groups[gid]
		if contains(g.Members, username) {
			groups = append(groups, protocol.GroupSummary{
				GroupID:     g.ID,
				Name:        g.Name,
				MemberCount: len(g.Members),
			})
		}
	}
	return groups
}

// Counts returns the number of registered users and groups.
func (d *Directory) Counts() (users, groups int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users), len(d.groups)
}

func profileOf(u *User) protocol.Profile {
	return protocol.Profile{Nickname: u.Nickname, Avatar: u.Avatar, Status: u.Status}
}

func summaryOf(u *User) protocol.UserSummary {
	return protocol.UserSummary{Username: u.Username, Nickname: u.Nickname, Avatar: u.Avatar, Status: u.Status}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
