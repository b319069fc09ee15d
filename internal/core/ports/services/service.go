package services

// ServiceContainer bundles the service facades handed to route registration.
type ServiceContainer struct {
	Auth        AuthSvcFacade
	User        UserSvcFacade
	Contact     ContactSvcFacade
	GoogleOAuth GoogleOAuthSvcFacade
}
