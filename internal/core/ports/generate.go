package ports

//go:generate mockgen -source=identity.go -destination=mocks/identity_mock.go -package=mocks
//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks
//go:generate mockgen -source=notifier.go -destination=mocks/notifier_mock.go -package=mocks
