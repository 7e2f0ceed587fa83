/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storage/leveldb"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-messaging-go/pkg/controller"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport"
	arieshttp "github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport/http"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport/queue"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport/ws"
	"github.com/hyperledger/aries-messaging-go/pkg/framework/aries"
)

const (
	// api host flag.
	agentHostFlagName      = "api-host"
	agentHostEnvKey        = "AGENT_API_HOST"
	agentHostFlagShorthand = "a"
	agentHostFlagUsage     = "Host Name:Port." +
		" Alternatively, this can be set with the following environment variable: " + agentHostEnvKey

	// api token flag.
	agentTokenFlagName      = "api-token"
	agentTokenEnvKey        = "AGENT_API_TOKEN" // nolint:gosec
	agentTokenFlagShorthand = "t"
	agentTokenFlagUsage     = "Check for bearer token in the authorization header (optional)." +
		" Alternatively, this can be set with the following environment variable: " + agentTokenEnvKey

	databaseTypeFlagName      = "database-type"
	databaseTypeEnvKey        = "AGENT_DATABASE_TYPE"
	databaseTypeFlagShorthand = "q"
	databaseTypeFlagUsage     = "The type of database to use for DID documents and connection records. " +
		"Supported options: mem, leveldb. " +
		" Alternatively, this can be set with the following environment variable: " + databaseTypeEnvKey

	databasePathFlagName      = "database-path"
	databasePathEnvKey        = "AGENT_DATABASE_PATH"
	databasePathFlagShorthand = "p"
	databasePathFlagUsage     = "Directory of the leveldb database. Not needed if using memstore." +
		" Alternatively, this can be set with the following environment variable: " + databasePathEnvKey

	// log level.
	agentLogLevelFlagName  = "log-level"
	agentLogLevelEnvKey    = "AGENT_LOG_LEVEL"
	agentLogLevelFlagUsage = "Log level." +
		" Possible values [INFO] [DEBUG] [ERROR] [WARNING] [CRITICAL] . Defaults to INFO if not set." +
		" Alternatively, this can be set with the following environment variable: " + agentLogLevelEnvKey

	// outbound transport flag.
	agentOutboundTransportFlagName      = "outbound-transport"
	agentOutboundTransportEnvKey        = "AGENT_OUTBOUND_TRANSPORT"
	agentOutboundTransportFlagShorthand = "o"
	agentOutboundTransportFlagUsage     = "Outbound transport type." +
		" This flag can be repeated, allowing for multiple transports." +
		" Possible values [http] [ws]. Defaults to http if not set." +
		" Alternatively, this can be set with the following environment variable: " + agentOutboundTransportEnvKey

	// outbound queue workers flag.
	agentQueueWorkersFlagName  = "queue-workers"
	agentQueueWorkersEnvKey    = "AGENT_QUEUE_WORKERS"
	agentQueueWorkersFlagUsage = "Number of workers delivering queued outbound packets." +
		" Alternatively, this can be set with the following environment variable: " + agentQueueWorkersEnvKey

	// connection target cache ttl flag.
	agentTargetCacheTTLFlagName  = "target-cache-ttl"
	agentTargetCacheTTLEnvKey    = "AGENT_TARGET_CACHE_TTL"
	agentTargetCacheTTLFlagUsage = "How long a resolved connection target stays cached, for example 30s or 5m." +
		" Zero disables the cache." +
		" Alternatively, this can be set with the following environment variable: " + agentTargetCacheTTLEnvKey

	agentTLSCertFileFlagName      = "tls-cert-file"
	agentTLSCertFileEnvKey        = "TLS_CERT_FILE"
	agentTLSCertFileFlagShorthand = "c"
	agentTLSCertFileFlagUsage     = "tls certificate file." +
		" Alternatively, this can be set with the following environment variable: " + agentTLSCertFileEnvKey

	agentTLSKeyFileFlagName      = "tls-key-file"
	agentTLSKeyFileEnvKey        = "TLS_KEY_FILE"
	agentTLSKeyFileFlagShorthand = "k"
	agentTLSKeyFileFlagUsage     = "tls key file." +
		" Alternatively, this can be set with the following environment variable: " + agentTLSKeyFileEnvKey

	httpProtocol      = "http"
	websocketProtocol = "ws"

	databaseTypeMemOption     = "mem"
	databaseTypeLevelDBOption = "leveldb"
)

var (
	errMissingHost = errors.New("host not provided")
	logger         = log.New("aries-messaging/agent-rest")
)

type agentParameters struct {
	server                  server
	host, token             string
	tlsCertFile, tlsKeyFile string
	outboundTransports      []string
	queueWorkers            int
	targetCacheTTL          *time.Duration
	dbParam                 *dbParam
}

type dbParam struct {
	dbType string
	path   string
}

// nolint:gochecknoglobals
var supportedStorageProviders = map[string]func(path string) (storage.Provider, error){
	databaseTypeMemOption: func(_ string) (storage.Provider, error) { // nolint:unparam
		return mem.NewProvider(), nil
	},
	databaseTypeLevelDBOption: func(path string) (storage.Provider, error) {
		if path == "" {
			return nil, fmt.Errorf("%s must be set for the leveldb database", databasePathFlagName)
		}

		return leveldb.NewProvider(path), nil
	},
}

type server interface {
	ListenAndServe(host string, router http.Handler, certFile, keyFile string) error
}

// HTTPServer represents an actual server implementation.
type HTTPServer struct{}

// ListenAndServe starts the server using the standard Go HTTP server implementation.
func (s *HTTPServer) ListenAndServe(host string, router http.Handler, certFile, keyFile string) error {
	if certFile != "" && keyFile != "" {
		return http.ListenAndServeTLS(host, certFile, keyFile, router)
	}

	return http.ListenAndServe(host, router) // nolint:gosec
}

// Cmd returns the Cobra start command.
func Cmd(server server) (*cobra.Command, error) {
	startCmd := createStartCMD(server)

	createFlags(startCmd)

	return startCmd, nil
}

func createStartCMD(server server) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start an agent",
		Long:  "Start a DIDComm messaging agent controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			parameters, err := newAgentParameters(server, cmd)
			if err != nil {
				return err
			}

			return startAgent(parameters)
		},
	}
}

func newAgentParameters(server server, cmd *cobra.Command) (*agentParameters, error) { //nolint: funlen
	host, err := getUserSetVar(cmd, agentHostFlagName, agentHostEnvKey, false)
	if err != nil {
		return nil, err
	}

	token, err := getUserSetVar(cmd, agentTokenFlagName, agentTokenEnvKey, true)
	if err != nil {
		return nil, err
	}

	logLevel, err := getUserSetVar(cmd, agentLogLevelFlagName, agentLogLevelEnvKey, true)
	if err != nil {
		return nil, err
	}

	err = setLogLevel(logLevel)
	if err != nil {
		return nil, err
	}

	dbParam, err := getDBParam(cmd)
	if err != nil {
		return nil, err
	}

	outboundTransports, err := getUserSetVars(cmd, agentOutboundTransportFlagName,
		agentOutboundTransportEnvKey, true)
	if err != nil {
		return nil, err
	}

	queueWorkers, err := getQueueWorkers(cmd)
	if err != nil {
		return nil, err
	}

	targetCacheTTL, err := getTargetCacheTTL(cmd)
	if err != nil {
		return nil, err
	}

	tlsCertFile, err := getUserSetVar(cmd, agentTLSCertFileFlagName, agentTLSCertFileEnvKey, true)
	if err != nil {
		return nil, err
	}

	tlsKeyFile, err := getUserSetVar(cmd, agentTLSKeyFileFlagName, agentTLSKeyFileEnvKey, true)
	if err != nil {
		return nil, err
	}

	return &agentParameters{
		server:             server,
		host:               host,
		token:              token,
		dbParam:            dbParam,
		outboundTransports: outboundTransports,
		queueWorkers:       queueWorkers,
		targetCacheTTL:     targetCacheTTL,
		tlsCertFile:        tlsCertFile,
		tlsKeyFile:         tlsKeyFile,
	}, nil
}

func getDBParam(cmd *cobra.Command) (*dbParam, error) {
	dbParam := &dbParam{}

	var err error

	dbParam.dbType, err = getUserSetVar(cmd, databaseTypeFlagName, databaseTypeEnvKey, false)
	if err != nil {
		return nil, err
	}

	dbParam.path, err = getUserSetVar(cmd, databasePathFlagName, databasePathEnvKey, true)
	if err != nil {
		return nil, err
	}

	return dbParam, nil
}

func getQueueWorkers(cmd *cobra.Command) (int, error) {
	v, err := getUserSetVar(cmd, agentQueueWorkersFlagName, agentQueueWorkersEnvKey, true)
	if err != nil {
		return 0, err
	}

	if v == "" {
		return 0, nil
	}

	workers, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse queue workers %s: %w", v, err)
	}

	if workers < 1 {
		return 0, fmt.Errorf("queue workers must be at least 1, got %d", workers)
	}

	return workers, nil
}

func getTargetCacheTTL(cmd *cobra.Command) (*time.Duration, error) {
	v, err := getUserSetVar(cmd, agentTargetCacheTTLFlagName, agentTargetCacheTTLEnvKey, true)
	if err != nil {
		return nil, err
	}

	if v == "" {
		return nil, nil
	}

	ttl, err := time.ParseDuration(v)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target cache ttl %s: %w", v, err)
	}

	return &ttl, nil
}

func createFlags(startCmd *cobra.Command) {
	// agent host flag
	startCmd.Flags().StringP(agentHostFlagName, agentHostFlagShorthand, "", agentHostFlagUsage)

	// agent token flag
	startCmd.Flags().StringP(agentTokenFlagName, agentTokenFlagShorthand, "", agentTokenFlagUsage)

	// db type
	startCmd.Flags().StringP(databaseTypeFlagName, databaseTypeFlagShorthand, "", databaseTypeFlagUsage)

	// db path
	startCmd.Flags().StringP(databasePathFlagName, databasePathFlagShorthand, "", databasePathFlagUsage)

	// log level
	startCmd.Flags().StringP(agentLogLevelFlagName, "", "", agentLogLevelFlagUsage)

	// outbound transport
	startCmd.Flags().StringSliceP(agentOutboundTransportFlagName, agentOutboundTransportFlagShorthand, []string{},
		agentOutboundTransportFlagUsage)

	// queue workers
	startCmd.Flags().StringP(agentQueueWorkersFlagName, "", "", agentQueueWorkersFlagUsage)

	// target cache ttl
	startCmd.Flags().StringP(agentTargetCacheTTLFlagName, "", "", agentTargetCacheTTLFlagUsage)

	// tls cert file
	startCmd.Flags().StringP(agentTLSCertFileFlagName, agentTLSCertFileFlagShorthand, "", agentTLSCertFileFlagUsage)

	// tls key file
	startCmd.Flags().StringP(agentTLSKeyFileFlagName, agentTLSKeyFileFlagShorthand, "", agentTLSKeyFileFlagUsage)
}

func getUserSetVar(cmd *cobra.Command, flagName, envKey string, isOptional bool) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	if isOptional || isSet {
		return value, nil
	}

	return "", errors.New("Neither " + flagName + " (command line flag) nor " + envKey +
		" (environment variable) have been set.")
}

func getUserSetVars(cmd *cobra.Command, flagName, envKey string, isOptional bool) ([]string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetStringSlice(flagName)
		if err != nil {
			return nil, fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	var values []string

	if isSet {
		values = strings.Split(value, ",")
	}

	if isOptional || isSet {
		return values, nil
	}

	return nil, fmt.Errorf(" %s not set. "+
		"It must be set via either command line or environment variable", flagName)
}

func getOutboundTransportOpts(outboundTransports []string) ([]aries.Option, error) {
	var opts []aries.Option

	var transports []transport.OutboundTransport

	for _, outboundTransport := range outboundTransports {
		switch outboundTransport {
		case httpProtocol:
			outbound, err := arieshttp.NewOutbound(arieshttp.WithOutboundHTTPClient(&http.Client{}))
			if err != nil {
				return nil, fmt.Errorf("http outbound transport initialization failed: %w", err)
			}

			transports = append(transports, outbound)
		case websocketProtocol:
			transports = append(transports, ws.NewOutbound())
		default:
			return nil, fmt.Errorf("outbound transport [%s] not supported", outboundTransport)
		}
	}

	if len(transports) > 0 {
		opts = append(opts, aries.WithOutboundTransports(transports...))
	}

	return opts, nil
}

func setLogLevel(logLevel string) error {
	if logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("failed to parse log level '%s' : %w", logLevel, err)
		}

		log.SetLevel("", level)

		logger.Infof("logger level set to %s", logLevel)
	}

	return nil
}

func validateAuthorizationBearerToken(w http.ResponseWriter, r *http.Request, token string) bool {
	actHdr := r.Header.Get("Authorization")
	expHdr := "Bearer " + token

	if subtle.ConstantTimeCompare([]byte(actHdr), []byte(expHdr)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorised.\n")) // nolint:gosec,errcheck

		return false
	}

	return true
}

func authorizationMiddleware(token string) mux.MiddlewareFunc {
	middleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validateAuthorizationBearerToken(w, r, token) {
				next.ServeHTTP(w, r)
			}
		})
	}

	return middleware
}

func startAgent(parameters *agentParameters) error {
	if parameters.host == "" {
		return errMissingHost
	}

	framework, err := createAgent(parameters)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := framework.Close(); closeErr != nil {
			logger.Warnf("failed to close framework: %s", closeErr)
		}
	}()

	ctx, err := framework.Context()
	if err != nil {
		return fmt.Errorf("failed to start agent rest on port [%s], failed to get context : %w",
			parameters.host, err)
	}

	router := mux.NewRouter()

	if parameters.token != "" {
		router.Use(authorizationMiddleware(parameters.token))
	}

	// get all HTTP REST API handlers available for controller API
	for _, handler := range controller.GetRESTHandlers(ctx) {
		router.HandleFunc(handler.Path(), handler.Handle()).Methods(handler.Method())
	}

	logger.Infof("Starting agent rest on host [%s]", parameters.host)
	// start server on given port and serve using given handlers
	handler := cors.New(
		cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodHead},
			AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		},
	).Handler(router)

	err = parameters.server.ListenAndServe(parameters.host, handler, parameters.tlsCertFile, parameters.tlsKeyFile)
	if err != nil {
		return fmt.Errorf("failed to start agent rest on port [%s], cause:  %w", parameters.host, err)
	}

	return nil
}

func createAgent(parameters *agentParameters) (*aries.Aries, error) {
	var opts []aries.Option

	storePro, err := createStoreProvider(parameters)
	if err != nil {
		return nil, err
	}

	opts = append(opts, aries.WithStoreProvider(storePro))

	outboundTransportOpts, err := getOutboundTransportOpts(parameters.outboundTransports)
	if err != nil {
		return nil, fmt.Errorf("failed to start agent rest on port [%s], failed to outbound transport opts : %w",
			parameters.host, err)
	}

	opts = append(opts, outboundTransportOpts...)

	if parameters.queueWorkers > 0 {
		opts = append(opts, aries.WithQueueOptions(queue.WithWorkers(parameters.queueWorkers)))
	}

	if parameters.targetCacheTTL != nil {
		opts = append(opts, aries.WithTargetCacheTTL(*parameters.targetCacheTTL))
	}

	framework, err := aries.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start agent rest on port [%s], failed to initialize framework :  %w",
			parameters.host, err)
	}

	return framework, nil
}

func createStoreProvider(parameters *agentParameters) (storage.Provider, error) {
	provider, supported := supportedStorageProviders[parameters.dbParam.dbType]
	if !supported {
		return nil, fmt.Errorf("key database type not set to a valid type." +
			" run start --help to see the available options")
	}

	store, err := provider(parameters.dbParam.path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage provider : %w", parameters.dbParam.dbType, err)
	}

	return store, nil
}
