// Package services holds the business logic between controllers and repositories.
//
// Services defined in this package:
//   - AuthService: login, registration policy and the current user
//   - DiplomaService: diploma CRUD, file intake and the listing/filter views
//   - InviteService: admin-issued registration codes
package services
