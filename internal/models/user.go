package models

// User is a member profile. Name is copied into every post and comment the
// user authors; profile updates fan the new value back out to those copies.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Fields encodes the profile for storage. The id is the document key and is
// not duplicated into the field map.
func (u *User) Fields() map[string]string {
	return map[string]string{
		"name":  u.Name,
		"title": u.Title,
	}
}

// UserFromFields decodes a stored user document.
func UserFromFields(id string, fields map[string]string) *User {
	return &User{
		ID:    id,
		Name:  fields["name"],
		Title: fields["title"],
	}
}
