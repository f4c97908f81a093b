// Package authz implements role-based access control for the
// conference system. Accounts hold one or more of the roles author,
// reviewer, chair, and admin, optionally scoped to a single
// conference. A declarative rules table maps each protected action to
// the ownership, role, and state requirements that permit it; services
// call Authorize rather than checking roles inline. Role grants and
// revocations are admin-only operations and every grant, revocation,
// and denial is audited.
//
// Role lookups go through a two-tier cache (in-process LRU plus an
// optional shared Redis tier) that is invalidated on every assignment
// change.
package authz
