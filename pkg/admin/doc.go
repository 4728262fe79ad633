// Package admin implements the privileged catalog-management controller:
// listing, creating, updating, and deleting products, plus the draft-based
// edit flow behind the update form.
//
// Two rules shape everything here. Validation happens before the network:
// a draft that fails its local checks produces field-scoped errors and no
// request at all. And mutations never patch local state: after a successful
// create, update, or delete the controller refetches the whole product set,
// trading a round trip for the guarantee that what is displayed converged to
// remote truth.
package admin
