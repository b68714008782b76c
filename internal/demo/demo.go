// Package demo holds the sample mapped types the CLI works with: users and
// the roles they belong to.
package demo

import (
	"fmt"

	"ormlite/internal/schema"
)

// User is one row of the USER table.
type User struct {
	ID       int    `orm:"ID,pk"`
	Email    string `orm:"EMAIL"`
	Password string `orm:"PASS"`
	Name     string `orm:"NAME"`
	RoleID   int    `orm:"ROLE_ID,default=0"`
	Expires  int64  `orm:"EXPIRES,default=0"`
}

// TableName implements schema.Tabler.
func (User) TableName() string { return "USER" }

// RowConstructor implements schema.RowConstructor.
func (User) RowConstructor() any { return NewUser }

// NewUser builds a User from one USER row.
func NewUser(id int, email, pass, name string, roleID int, expires int64) User {
	return User{ID: id, Email: email, Password: pass, Name: name, RoleID: roleID, Expires: expires}
}

// String omits the password.
func (u User) String() string {
	return fmt.Sprintf("User{id=%d, email=%q, name=%q, role=%d, expires=%d}",
		u.ID, u.Email, u.Name, u.RoleID, u.Expires)
}

// Role is one row of the ROLE table.
type Role struct {
	ID   int    `orm:"ID,pk"`
	Name string `orm:"NAME"`
}

// TableName implements schema.Tabler.
func (Role) TableName() string { return "ROLE" }

// RowConstructor implements schema.RowConstructor.
func (Role) RowConstructor() any { return NewRole }

// NewRole builds a Role from one ROLE row.
func NewRole(id int, name string) Role { return Role{ID: id, Name: name} }

func (r Role) String() string { return fmt.Sprintf("Role{id=%d, name=%q}", r.ID, r.Name) }

// Registry returns a registry of every demo type, roles first.
func Registry() *schema.Registry {
	return schema.NewRegistry(Role{}, User{})
}
