// internal/storage/schema.go
package storage

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY AUTO_INCREMENT,
		user_name VARCHAR(64) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_name TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS Source (
		fSourceKEY INTEGER PRIMARY KEY,
		fSourceName TEXT NOT NULL,
		fRealSourceKEY INTEGER,
		fTest TEXT NOT NULL DEFAULT 'no'
	)`,
	`CREATE TABLE IF NOT EXISTS Project (fProjectKEY INTEGER PRIMARY KEY, fProjectName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS ObservationMode (fObservationModeKEY INTEGER PRIMARY KEY, fObservationModeName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS LightConditions (fLightConditionsKEY INTEGER PRIMARY KEY, fLightConditionsName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS DiscriminatorThresholdTable (fDiscriminatorThresholdTableKEY INTEGER PRIMARY KEY, fDiscriminatorThresholdTableName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS RunType (fRunTypeKEY INTEGER PRIMARY KEY, fRunTypeName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS MarsVersion (
		fMarsVersion INTEGER PRIMARY KEY,
		fMarsVersionName TEXT NOT NULL,
		fStartDate DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Sequences (
		fSequenceFirst INTEGER NOT NULL,
		fTelescopeNumber INTEGER NOT NULL DEFAULT 1,
		fSequenceLast INTEGER,
		fSourceKEY INTEGER,
		fProjectKEY INTEGER,
		fObservationModeKEY INTEGER,
		fLightConditionsKEY INTEGER,
		fDiscriminatorThresholdTableKEY INTEGER,
		fRunStart DATETIME,
		fRunStop DATETIME,
		fRunTime INTEGER,
		fNumEvents INTEGER,
		fZenithDistanceMin REAL,
		fZenithDistanceMax REAL,
		fAzimuthMin REAL,
		fAzimuthMax REAL,
		PRIMARY KEY (fSequenceFirst, fTelescopeNumber)
	)`,
	`CREATE TABLE IF NOT EXISTS SequenceProcessStatus (
		fSequenceFirst INTEGER NOT NULL,
		fTelescopeNumber INTEGER NOT NULL DEFAULT 1,
		fSequenceFileWritten DATETIME,
		fAllFilesAvail DATETIME,
		fCallisto DATETIME,
		fFillCallisto DATETIME,
		fStar DATETIME,
		fFillStar DATETIME,
		fStartTime DATETIME,
		fFailedTime DATETIME,
		fProgramId INTEGER,
		fReturnCode INTEGER,
		PRIMARY KEY (fSequenceFirst, fTelescopeNumber)
	)`,
	`CREATE TABLE IF NOT EXISTS Calibration (
		fSequenceFirst INTEGER NOT NULL,
		fTelescopeNumber INTEGER NOT NULL DEFAULT 1,
		fUnsuitableInner REAL,
		fIsolatedInner REAL,
		fIsolatedMaxCluster REAL,
		fMeanPedRmsInner REAL,
		PRIMARY KEY (fSequenceFirst, fTelescopeNumber)
	)`,
	`CREATE TABLE IF NOT EXISTS Star (
		fSequenceFirst INTEGER NOT NULL,
		fTelescopeNumber INTEGER NOT NULL DEFAULT 1,
		fPSF REAL,
		fDataRate REAL,
		fNumStarsMed REAL,
		fNumStarsCorMed REAL,
		fInhomogeneity REAL,
		fEffOnTime REAL,
		PRIMARY KEY (fSequenceFirst, fTelescopeNumber)
	)`,
	`CREATE TABLE IF NOT EXISTS RunData (
		fRunNumber INTEGER NOT NULL,
		fTelescopeNumber INTEGER NOT NULL DEFAULT 1,
		fRunTypeKEY INTEGER,
		fSourceKEY INTEGER,
		fSequenceFirst INTEGER,
		fRunStart DATETIME,
		fRunStop DATETIME,
		fNumEvents INTEGER,
		fZenithDistance REAL,
		fAzimuth REAL,
		fROI INTEGER,
		fLastUpdate DATETIME,
		PRIMARY KEY (fRunNumber, fTelescopeNumber)
	)`,
	`CREATE TABLE IF NOT EXISTS RunProcessStatus (
		fRunNumber INTEGER NOT NULL,
		fTelescopeNumber INTEGER NOT NULL DEFAULT 1,
		fRawFileAvail DATETIME,
		fDataCheckDone DATETIME,
		fStartTime DATETIME,
		fFailedTime DATETIME,
		fProgramId INTEGER,
		fReturnCode INTEGER,
		PRIMARY KEY (fRunNumber, fTelescopeNumber)
	)`,
	`CREATE TABLE IF NOT EXISTS DataSets (
		fDataSetNumber INTEGER PRIMARY KEY,
		fUserKEY INTEGER,
		fDataSetName TEXT,
		fComment TEXT,
		fSourceKEY INTEGER,
		fObservationModeKEY INTEGER,
		fRunStart DATETIME,
		fRunStop DATETIME,
		fZenithDistanceMin REAL,
		fZenithDistanceMax REAL,
		fRunTime REAL
	)`,
	`CREATE TABLE IF NOT EXISTS DataSetProcessStatus (
		fDataSetNumber INTEGER PRIMARY KEY,
		fDataSetInserted DATETIME,
		fDataSetFileWritten DATETIME,
		fStarFilesAvail DATETIME,
		fGanymed DATETIME,
		fFillGanymed DATETIME,
		fWebGanymed DATETIME,
		fWebPlotDBGanymed DATETIME,
		fStartTime DATETIME,
		fFailedTime DATETIME,
		fProgramId INTEGER,
		fReturnCode INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS DataSetSequenceMapping (
		fDataSetNumber INTEGER NOT NULL,
		fSequenceFirst INTEGER NOT NULL,
		fOnOff INTEGER NOT NULL,
		PRIMARY KEY (fDataSetNumber, fSequenceFirst)
	)`,
	`CREATE TABLE IF NOT EXISTS RunComments (
		fCommentKEY INTEGER PRIMARY KEY AUTOINCREMENT,
		fNight TEXT NOT NULL,
		fRunID INTEGER NOT NULL,
		fComment TEXT NOT NULL,
		fUser TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS SequenceComments (
		fCommentKEY INTEGER PRIMARY KEY AUTOINCREMENT,
		fNight TEXT NOT NULL,
		fSequenceID INTEGER NOT NULL,
		fComment TEXT NOT NULL,
		fUser TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ParticleType (fParticleTypeKEY INTEGER PRIMARY KEY, fParticleTypeName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS AtmosphericModel (fAtmosphericModelKEY INTEGER PRIMARY KEY, fAtmosphericModelName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS CeresSetup (fCeresSetupKEY INTEGER PRIMARY KEY, fCeresSetupName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS CorsikaInfo (
		fRunNumber INTEGER NOT NULL,
		fFileNumber INTEGER NOT NULL,
		fNumEvents INTEGER,
		fImpactMax REAL,
		fViewConeMax REAL,
		fStartingAltitude REAL,
		fZenithDistanceMin REAL,
		fZenithDistanceMax REAL,
		fAzimuthMin REAL,
		fAzimuthMax REAL,
		fEnergyMin REAL,
		fEnergyMax REAL,
		fEnergySlope REAL,
		fParticleTypeKEY INTEGER,
		fAtmosphericModelKEY INTEGER,
		PRIMARY KEY (fRunNumber, fFileNumber)
	)`,
	`CREATE TABLE IF NOT EXISTS CeresInfo (
		fRunNumber INTEGER NOT NULL,
		fFileNumber INTEGER NOT NULL,
		fNumReUseShowers INTEGER,
		fSequenceNumber INTEGER,
		fMirrorDiameter REAL,
		fRunTypeKEY INTEGER,
		fCeresSetupKEY INTEGER,
		PRIMARY KEY (fRunNumber, fFileNumber)
	)`,
	`CREATE TABLE IF NOT EXISTS CorsikaStatus (
		fRunNumber INTEGER NOT NULL,
		fFileNumber INTEGER NOT NULL,
		fStartTime DATETIME,
		fStopTime DATETIME,
		fReturnCode INTEGER,
		fAvailable DATETIME,
		PRIMARY KEY (fRunNumber, fFileNumber)
	)`,
	`CREATE TABLE IF NOT EXISTS CeresStatus (
		fRunNumber INTEGER NOT NULL,
		fFileNumber INTEGER NOT NULL,
		fStartTime DATETIME,
		fStopTime DATETIME,
		fReturnCode INTEGER,
		fAvailable DATETIME,
		PRIMARY KEY (fRunNumber, fFileNumber)
	)`,
	`CREATE TABLE IF NOT EXISTS SequenceFileStatus (
		fRunNumber INTEGER PRIMARY KEY,
		fStartTime DATETIME,
		fStopTime DATETIME,
		fReturnCode INTEGER,
		fAvailable DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS CallistoStatus (
		fRunNumber INTEGER PRIMARY KEY,
		fStartTime DATETIME,
		fStopTime DATETIME,
		fReturnCode INTEGER,
		fAvailable DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS StarStatus (
		fRunNumber INTEGER PRIMARY KEY,
		fStartTime DATETIME,
		fStopTime DATETIME,
		fReturnCode INTEGER,
		fAvailable DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS SequenceBuildStatus (
		fDate DATE PRIMARY KEY,
		fCCFilled DATETIME,
		fExclusionsDone DATETIME,
		fSequenceEntriesBuilt DATETIME,
		fStartTime DATETIME,
		fFailedTime DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS Telescope (fTelescopeKEY INTEGER PRIMARY KEY, fTelescopeName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS Object (fObjectKEY INTEGER PRIMARY KEY, fObjectName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS Band (fBandKEY INTEGER PRIMARY KEY, fBandName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS FitsFile (fFitsFileKEY INTEGER PRIMARY KEY, fFitsFileName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS Status (fStatusKEY INTEGER PRIMARY KEY, fStatusName TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS OpticalData (
		fTimestamp DATETIME NOT NULL,
		fExposure REAL,
		fSkyLevel REAL,
		fFWHM REAL,
		fApertureRadius REAL,
		fInstrumentalMag REAL,
		fInstrumentalMagErr REAL,
		fTelescopeKEY INTEGER,
		fObjectKEY INTEGER,
		fBandKEY INTEGER,
		fFitsFileKEY INTEGER,
		fStatusKEY INTEGER
	)`,
}
