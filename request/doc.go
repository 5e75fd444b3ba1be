// Package request translates request objects into HTTP parameter maps.
//
// Fields opt in with a struct tag:
//
//	type ListPastes struct {
//		UserKey string `param:"api_user_key,required"`
//		Limit   int    `param:"limit"`
//		Purge   bool   `param:"delete_on_error,adapter=yes_no"`
//	}
//
//	params, err := request.Translate(ListPastes{UserKey: "swkj-22984", Limit: 5})
//
// Embedded structs are walked after the embedding type's own fields, so a
// request type can reuse the parameters of the structs it embeds. A tag on
// the embedded field itself makes the whole embedded value a parameter:
//
//	type Since struct {
//		time.Time `param:"since,required,adapter=unix"`
//	}
// Unexported fields are read through a Get<Name>, Is<Name> (bool fields) or
// <Name> method.
//
// Translation rules
//   - nil values are not converted and read as blank
//   - a required parameter whose value is blank fails with RequiredParameterMissing
//   - optional blank parameters are emitted as "" and removed by the default DropBlank filter
//   - a name declared twice keeps the value of the field discovered last
//   - on any error no map is returned
//
// Schema offers the same translation from explicit declarations, with
// accessor closures and adapter values in place of tags and reflection.
package request
