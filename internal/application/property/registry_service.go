package property

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentroll/backend/internal/domain/property"
	"github.com/rentroll/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RegistryService maintains the physical inventory: properties, lots,
// water meters and the tenants occupying them.
type RegistryService struct {
	propertyRepo property.PropertyRepository
	lotRepo      property.LotRepository
	meterRepo    property.WaterMeterRepository
	tenantRepo   property.TenantRepository
	logger       *zap.Logger
}

// NewRegistryService creates a new RegistryService
func NewRegistryService(
	propertyRepo property.PropertyRepository,
	lotRepo property.LotRepository,
	meterRepo property.WaterMeterRepository,
	tenantRepo property.TenantRepository,
	logger *zap.Logger,
) *RegistryService {
	return &RegistryService{
		propertyRepo: propertyRepo,
		lotRepo:      lotRepo,
		meterRepo:    meterRepo,
		tenantRepo:   tenantRepo,
		logger:       logger,
	}
}

// CreateProperty registers a new property
func (s *RegistryService) CreateProperty(ctx context.Context, code, streetAddress, cityStateZip string) (*property.Property, error) {
	if _, err := s.propertyRepo.FindByCode(ctx, code); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	prop, err := property.NewProperty(code, streetAddress, cityStateZip)
	if err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Save(ctx, prop); err != nil {
		return nil, err
	}
	return prop, nil
}

// ListProperties returns all registered properties
func (s *RegistryService) ListProperties(ctx context.Context) ([]property.Property, error) {
	return s.propertyRepo.FindAll(ctx)
}

// CreateLot registers a new lot under a property
func (s *RegistryService) CreateLot(ctx context.Context, code, propertyCode, streetAddress, cityStateZip string) (*property.Lot, error) {
	if _, err := s.propertyRepo.FindByCode(ctx, propertyCode); err != nil {
		return nil, err
	}
	if _, err := s.lotRepo.FindByCode(ctx, code); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	lot, err := property.NewLot(code, propertyCode, streetAddress, cityStateZip)
	if err != nil {
		return nil, err
	}
	if err := s.lotRepo.Save(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// SetLotStorage enables or disables the storage unit on a lot. A nil
// override with enabled true means the configured default rate applies.
func (s *RegistryService) SetLotStorage(ctx context.Context, lotID uuid.UUID, enabled bool, override *decimal.Decimal) (*property.Lot, error) {
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if enabled {
		if err := lot.EnableStorage(override); err != nil {
			return nil, err
		}
	} else {
		lot.DisableStorage()
	}
	if err := s.lotRepo.Save(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// ListLots returns all registered lots
func (s *RegistryService) ListLots(ctx context.Context) ([]property.Lot, error) {
	return s.lotRepo.FindAll(ctx)
}

// CreateMeter registers a new water meter, optionally already linked to
// a lot
func (s *RegistryService) CreateMeter(ctx context.Context, meterNumber int, lotID *uuid.UUID) (*property.WaterMeter, error) {
	if _, err := s.meterRepo.FindByMeterNumber(ctx, meterNumber); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if lotID != nil {
		if _, err := s.lotRepo.FindByID(ctx, *lotID); err != nil {
			return nil, err
		}
		if err := s.ensureLotUnmetered(ctx, *lotID); err != nil {
			return nil, err
		}
	}

	meter, err := property.NewWaterMeter(meterNumber, lotID)
	if err != nil {
		return nil, err
	}
	if err := s.meterRepo.Save(ctx, meter); err != nil {
		return nil, err
	}
	return meter, nil
}

// RelinkMeter moves a meter to another lot, or detaches it when lotID
// is nil. Used when hardware is swapped or a lot is re-plumbed.
func (s *RegistryService) RelinkMeter(ctx context.Context, meterID uuid.UUID, lotID *uuid.UUID) (*property.WaterMeter, error) {
	meter, err := s.meterRepo.FindByID(ctx, meterID)
	if err != nil {
		return nil, err
	}
	if lotID == nil {
		meter.Unassign()
	} else {
		if _, err := s.lotRepo.FindByID(ctx, *lotID); err != nil {
			return nil, err
		}
		if err := s.ensureLotUnmetered(ctx, *lotID); err != nil {
			return nil, err
		}
		meter.AssignToLot(*lotID)
	}
	if err := s.meterRepo.Save(ctx, meter); err != nil {
		return nil, err
	}

	s.logger.Info("Meter relinked",
		zap.Int("meter_number", meter.MeterNumber),
		zap.Bool("assigned", meter.IsAssigned()))
	return meter, nil
}

// ListMeters returns all registered meters
func (s *RegistryService) ListMeters(ctx context.Context) ([]property.WaterMeter, error) {
	return s.meterRepo.FindAll(ctx)
}

// CreateTenant registers a new tenant
func (s *RegistryService) CreateTenant(ctx context.Context, firstName, lastName string) (*property.Tenant, error) {
	tenant, err := property.NewTenant(firstName, lastName)
	if err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// LinkTenant associates a tenant with a billing account
func (s *RegistryService) LinkTenant(ctx context.Context, tenantID, accountID uuid.UUID) (*property.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	tenant.LinkAccount(accountID)
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// ListTenants returns all registered tenants
func (s *RegistryService) ListTenants(ctx context.Context) ([]property.Tenant, error) {
	return s.tenantRepo.FindAll(ctx)
}

// one meter per lot; the old link has to be broken explicitly
func (s *RegistryService) ensureLotUnmetered(ctx context.Context, lotID uuid.UUID) error {
	if _, err := s.meterRepo.FindByLotID(ctx, lotID); err == nil {
		return shared.NewDomainError("LOT_ALREADY_METERED", "Lot already has a water meter assigned")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return nil
}
