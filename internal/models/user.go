package models

import "time"

// Role is the kind of person a user record represents.
type Role string

const (
	RoleInstructor    Role = "docente"
	RoleAdministrator Role = "administrador"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleInstructor || r == RoleAdministrator
}

// User is a directory record for an instructor or an administrator.
// PasswordHash is only set for administrators and is never serialized to JSON.
type User struct {
	ID              string     `bson:"_id,omitempty" json:"id"`
	Cedula          string     `bson:"cedula,omitempty" json:"cedula,omitempty"`
	Nombre          string     `bson:"nombre" json:"nombre"`
	Email           string     `bson:"email" json:"email"`
	Telefono        string     `bson:"telefono" json:"telefono"`
	Departamento    string     `bson:"departamento" json:"departamento"`
	TituloAcademico string     `bson:"tituloAcademico" json:"tituloAcademico"`
	Role            Role       `bson:"role" json:"role"`
	Username        string     `bson:"username,omitempty" json:"username,omitempty"`
	PasswordHash    string     `bson:"password,omitempty" json:"-"`
	Activo          ActiveFlag `bson:"activo" json:"activo"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// UserUpdate holds the fields reconciliation is allowed to rewrite.
// Identity fields, role, credentials and the active flag are not part of it.
type UserUpdate struct {
	Nombre          string
	Email           string
	Telefono        string
	Departamento    string
	TituloAcademico string
}

// Apply copies the update onto u.
func (up UserUpdate) Apply(u *User) {
	u.Nombre = up.Nombre
	u.Email = up.Email
	u.Telefono = up.Telefono
	u.Departamento = up.Departamento
	u.TituloAcademico = up.TituloAcademico
}
