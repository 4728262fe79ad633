// Package catalog implements the browsing controller: full listing, search,
// and single-product detail against the remote catalog API.
//
// Only the most recently initiated listing call may ever update the
// displayed list. When searches are fired faster than the store answers,
// older in-flight results, including their failures, are silently
// discarded at resolution time; the transport is never aborted. Detail mode
// is orthogonal: entering it does not drop the retained list, and GoBack
// restores that list without a refetch.
package catalog
