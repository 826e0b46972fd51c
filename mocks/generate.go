package mocks

//go:generate mockgen -destination=./mock_price_source.go -package=mocks github.com/rxtech-lab/argo-signals/internal/datasource PriceSource
