// Package routing maps bare slugs onto canonical document routes.
//
// A Resolver probes one table per content type in a configured order and
// the first table holding the slug wins. The order is part of the site's
// configuration: the same slug may exist in several collections, and moving
// a type earlier in the list changes which document a bare link reaches.
package routing
