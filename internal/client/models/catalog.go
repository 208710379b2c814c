package models

import (
	"strconv"
)

// Resource names a catalog collection on the backend.
type Resource string

const (
	Genres    Resource = "genres"
	Libraries Resource = "libraries"
	Books     Resource = "books"
	Members   Resource = "members"
	Loans     Resource = "loans"
)

// Resources lists every catalog collection.
var Resources = []Resource{Genres, Libraries, Books, Members, Loans}

// Tabular is implemented by records that render as a table row.
type Tabular interface {
	Header() []string
	Row() []string
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (Genre) Header() []string { return []string{"ID", "Name"} }

func (g Genre) Row() []string { return []string{itoa(g.ID), g.Name} }

type Library struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

func (Library) Header() []string { return []string{"ID", "Name", "Address"} }

func (l Library) Row() []string { return []string{itoa(l.ID), l.Name, l.Address} }

type Book struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Genre       *int64 `json:"genre"`
	Library     *int64 `json:"library"`
	IsAvailable bool   `json:"is_available"`
}

func (Book) Header() []string { return []string{"ID", "Title", "Genre", "Library", "Status"} }

func (b Book) Row() []string {
	status := "Borrowed"
	if b.IsAvailable {
		status = "Available"
	}
	return []string{itoa(b.ID), b.Title, optional(b.Genre), optional(b.Library), status}
}

// Member is a backend user account as exposed by the members endpoint.
type Member struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
	IsStaff     bool   `json:"is_staff"`
	Age         *int64 `json:"age,omitempty"`
}

func (Member) Header() []string { return []string{"ID", "Username", "Email", "Role", "Age"} }

func (m Member) Row() []string {
	role := "Reader"
	if m.IsSuperuser {
		role = "Administrator"
	}
	return []string{itoa(m.ID), m.Username, m.Email, role, optional(m.Age)}
}

type Loan struct {
	ID         int64   `json:"id"`
	Book       *int64  `json:"book"`
	Member     *int64  `json:"member"`
	LoanDate   string  `json:"loan_date"`
	ReturnDate *string `json:"return_date"`
}

func (Loan) Header() []string { return []string{"ID", "Book", "Member", "Loan Date", "Return Date"} }

func (l Loan) Row() []string {
	returned := "Not returned"
	if l.ReturnDate != nil && *l.ReturnDate != "" {
		returned = *l.ReturnDate
	}
	return []string{itoa(l.ID), optional(l.Book), optional(l.Member), l.LoanDate, returned}
}

// Returned reports whether the loan has been closed.
func (l Loan) Returned() bool {
	return l.ReturnDate != nil && *l.ReturnDate != ""
}

// Stats is the free-form summary returned by a collection's stats endpoint.
type Stats map[string]any

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func optional(v *int64) string {
	if v == nil {
		return "-"
	}
	return itoa(*v)
}
